package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/aseguradoss/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
		return
	}
	o.printText(data)
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
		return
	}
	fmt.Fprintln(o.w, msg)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.GameState:
		o.printGameState(v)
	case response.Player:
		o.printPlayer(v)
	case []response.Player:
		for _, p := range v {
			o.printPlayer(p)
		}
	case response.Event:
		o.printEvent(v)
	case []response.Event:
		for _, e := range v {
			o.printEvent(e)
		}
	case response.Roll:
		fmt.Fprintf(o.w, "Rolled: %d\n", v.Value)
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		o.printJSON(data)
	}
}

func (o *Output) printGameState(g response.GameState) {
	fmt.Fprintf(o.w, "State: %s\n", g.State)
	if len(g.Players) > 0 && g.CurrentIndex < len(g.Players) {
		fmt.Fprintf(o.w, "Turn: %s\n", g.Players[g.CurrentIndex].Name)
	}

	fmt.Fprintf(o.w, "Players (%d):\n", len(g.Players))
	for i, p := range g.Players {
		marker := "  "
		if i == g.CurrentIndex {
			marker = "> "
		}
		fmt.Fprint(o.w, marker)
		o.printPlayer(p)
	}

	if g.Decision != nil {
		fmt.Fprintln(o.w)
		o.printDecision(*g.Decision)
		if g.Pending > 0 {
			fmt.Fprintf(o.w, "Queued: %d\n", g.Pending)
		}
	}
}

func (o *Output) printPlayer(p response.Player) {
	skip := ""
	if p.SkipNextTurn {
		skip = " [pierde turno]"
	}
	insured := "-"
	if len(p.Insured) > 0 {
		insured = strings.Join(p.Insured, ", ")
	}
	fmt.Fprintf(o.w, "#%d %s: %d€ (sueldo %d, alquiler %d) casilla %d seguros: %s%s\n",
		p.ID, p.Name, p.Money, p.Salary, p.Rent, p.Position, insured, skip)
}

func (o *Output) printDecision(d response.Decision) {
	fmt.Fprintf(o.w, "Decision %s (%s)\n", d.ID, d.Kind)
	switch {
	case d.Message != "":
		fmt.Fprintf(o.w, "  %s\n", d.Message)
	case d.Event != nil:
		fmt.Fprintf(o.w, "  %s\n", d.Event.Texto)
	case d.InsuranceName != "":
		fmt.Fprintf(o.w, "  %s por %d€\n", d.InsuranceName, d.Price)
	}
	if d.Player != nil {
		fmt.Fprintf(o.w, "  Jugador: %s\n", d.Player.Name)
	}
	fmt.Fprintf(o.w, "  Respuestas: %s\n", strings.Join(d.Outcomes, ", "))
}

func (o *Output) printEvent(e response.Event) {
	discount := ""
	if e.Descuento != nil {
		discount = fmt.Sprintf(" (descuento %.0f%%)", *e.Descuento*100)
	}
	fmt.Fprintf(o.w, "#%d [%s] %s: %+d %s%s\n", e.ID, e.Tipo, e.Texto, e.Cantidad, e.Variable, discount)
}
