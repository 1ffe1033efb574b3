package input

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/keepaway/sim"
)

// Format renders specs in the notes format accepted by Parse.
func Format(specs []sim.AgentSpec) string {
	var b strings.Builder

	for i, s := range specs {
		if i > 0 {
			b.WriteString("\n")
		}

		items := make([]string, len(s.InitialItems))
		for j, item := range s.InitialItems {
			items[j] = strconv.FormatUint(item, 10)
		}

		fmt.Fprintf(&b, "Monkey %d:\n", i)
		fmt.Fprintf(&b, "  %s %s\n", itemsPrefix, strings.Join(items, ", "))
		fmt.Fprintf(&b, "  %s new = %s\n", operationPrefix, s.Operation)
		fmt.Fprintf(&b, "  %s %d\n", testPrefix, s.Divisor)
		fmt.Fprintf(&b, "    %s %d\n", ifTruePrefix, s.TrueDestination)
		fmt.Fprintf(&b, "    %s %d\n", ifFalsePrefix, s.FalseDestination)
	}

	return b.String()
}
