package expr

import (
	"strconv"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

// fixtureArchive holds one "expr => want" case per line, grouped into
// a single txtar file so new cases are a diff to one place rather than
// a new Go test function each time.
const fixtureArchive = `
-- int-literals.txt --
1 => 1
-42 => -42
0 => 0

-- arithmetic.txt --
1 + 17 => 18
10 + 2 * -3 - (1 + 1) => 2
2 * (3 + 4) => 14
100 / 0 => 0

-- precedence.txt --
2 + 3 * 4 => 14
(2 + 3) * 4 => 20
-2 * -3 => 6
`

func TestExpressionFixtures(t *testing.T) {
	arc := txtar.Parse([]byte(fixtureArchive))
	host := newTestHost()
	for _, f := range arc.Files {
		for _, line := range strings.Split(string(f.Data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			parts := strings.SplitN(line, "=>", 2)
			if len(parts) != 2 {
				t.Fatalf("%s: malformed fixture line %q", f.Name, line)
			}
			src := strings.TrimSpace(parts[0])
			want, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil {
				t.Fatalf("%s: bad expected value in %q: %v", f.Name, line, err)
			}
			got := evalExpr(t, src, host)
			i, ok := got.AsInt32()
			if !ok || int(i) != want {
				t.Errorf("%s: eval(%q) = %v, want %d", f.Name, src, got, want)
			}
		}
	}
}
