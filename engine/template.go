package engine

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/flosch/pongo2/v6"
	"go.uber.org/zap"

	"rpg-bot/model"
)

const dmServerName = "DM"

// Renderer evaluates command text templates over the invocation context.
type Renderer struct {
	log     *zap.Logger
	randInt func(lo, hi int) int
}

func NewRenderer(log *zap.Logger) *Renderer {
	return &Renderer{
		log:     log,
		randInt: uniformInt,
	}
}

// Render renders tpl for inv. A template that fails to parse or execute is
// returned unchanged.
func (r *Renderer) Render(tpl string, inv *model.Invocation) string {
	out, err := r.execute(tpl, r.context(inv))
	if err != nil {
		r.log.Warn("template render failed, using raw text",
			zap.String("command", inv.CommandName),
			zap.Error(err))
		return tpl
	}
	return out
}

func (r *Renderer) execute(tpl string, ctx pongo2.Context) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = "", fmt.Errorf("template panicked: %v", p)
		}
	}()
	if tpl == "" {
		return "", nil
	}
	t, err := pongo2.FromString("{% autoescape off %}" + tpl + "{% endautoescape %}")
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	out, err = t.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return out, nil
}

func (r *Renderer) context(inv *model.Invocation) pongo2.Context {
	serverName := inv.GuildName
	if serverName == "" {
		serverName = dmServerName
	}
	args := inv.Arguments

	return pongo2.Context{
		"user": map[string]any{
			"mention":     inv.User.Mention(),
			"name":        inv.User.Username,
			"displayName": inv.User.DisplayName,
			"id":          inv.User.ID,
		},
		"server": map[string]any{
			"name": serverName,
		},
		"random": r.random,
		"round":  round,
		"arguments": map[string]any{
			"get": func(i *pongo2.Value) any {
				idx := i.Integer()
				if idx < 1 || idx > len(args) || args[idx-1] == nil {
					return -1
				}
				return templateNumber(toNumber(args[idx-1]))
			},
		},
	}
}

func (r *Renderer) random(lo, hi *pongo2.Value) int {
	a, b := lo.Integer(), hi.Integer()
	if a > b {
		a, b = b, a
	}
	return r.randInt(a, b)
}

// uniformInt draws from [lo, hi]. The span is computed in uint64 so bounds
// at opposite ends of the int range do not overflow.
func uniformInt(lo, hi int) int {
	span := uint64(hi) - uint64(lo)
	if span == math.MaxUint64 {
		return int(rand.Uint64())
	}
	return lo + int(rand.Uint64N(span+1))
}

func round(x *pongo2.Value) any {
	f := x.Float()
	if x.IsString() {
		f = parseNumber(x.String())
	}
	return templateNumber(math.Round(f))
}
