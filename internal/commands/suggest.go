package commands

import (
	"slices"
	"strings"

	"github.com/charliek/devcli/internal/constants"
)

// Completions are the argument candidates known to the shell
type Completions struct {
	Services []string
	Groups   []string
}

// Suggest returns the completed input lines matching a partial input. A bare
// prefix completes command names; "name partial" completes the argument.
func Suggest(input string, c Completions) []string {
	if !strings.HasPrefix(input, "/") {
		return nil
	}
	body := strings.TrimPrefix(input, "/")
	name, partial, hasArg := strings.Cut(body, " ")

	if !hasArg {
		var out []string
		for _, s := range definitions {
			if strings.HasPrefix(string(s.Name), strings.ToLower(name)) {
				out = append(out, "/"+string(s.Name))
			}
		}
		slices.Sort(out)
		return out
	}

	def, ok := Lookup(strings.ToLower(name))
	if !ok || def.Arg == ArgNone || strings.Contains(partial, " ") {
		return nil
	}
	var out []string
	for _, cand := range argCandidates(def.Arg, c) {
		if strings.HasPrefix(cand, partial) {
			out = append(out, "/"+string(def.Name)+" "+cand)
		}
	}
	return out
}

// argCandidates lists arguments in sorted order with duplicates removed
func argCandidates(kind ArgKind, c Completions) []string {
	var all []string
	switch kind {
	case ArgTarget:
		all = append(all, constants.TargetAll)
		all = append(all, c.Groups...)
		all = append(all, c.Services...)
	case ArgView:
		all = append(all, constants.TargetAll, constants.TargetOff, constants.TargetClear)
		all = append(all, c.Services...)
	}
	slices.Sort(all)
	return slices.Compact(all)
}
