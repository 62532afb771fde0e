package javalang

import (
	"strings"

	"github.com/jrsls/jrsls/index"
)

// uriClass ranks a candidate's URI scheme for the tie-break table in
// spec.md §4.F: file-scheme first, then java.* archive entries, then
// any other archive entry, then everything else.
func uriClass(uri string) int {
	switch {
	case hasScheme(uri, "file"):
		return 0
	case hasScheme(uri, "jrsls-std") && isJavaLangArchiveEntry(uri):
		return 1
	case hasScheme(uri, "jrsls-std"):
		return 2
	default:
		return 3
	}
}

func hasScheme(uri, scheme string) bool {
	return len(uri) > len(scheme)+2 && uri[:len(scheme)+1] == scheme+":"
}

func isJavaLangArchiveEntry(uri string) bool {
	i := strings.Index(uri, ":")
	if i < 0 {
		return false
	}
	return strings.HasPrefix(strings.TrimLeft(uri[i+1:], "/"), "java/")
}

// overloadCandidate is the common shape pickBestOverload scores
// against, letting the same scorer serve both same-file method nodes
// (step 1) and indexed members reached through a qualifier (step 5).
type overloadCandidate struct {
	ParamTypes []index.InferredType
	IsVarargs  bool
	ParamCount int
	URI        string
}

// scorePair implements the arg/param scoring table in spec.md §4.F.
func scorePair(arg, param index.InferredType) int {
	if param.Kind == index.TypeUnknown || arg.Kind == index.TypeUnknown {
		return 1
	}
	if arg.Kind == param.Kind {
		if arg.Kind == index.TypeClass {
			if arg.Class == param.Class {
				return 100
			}
			return 0
		}
		return 100
	}
	switch {
	case arg.Kind == index.TypeInt && param.Kind == index.TypeLong:
		return 50
	case arg.Kind == index.TypeInt && param.Kind == index.TypeDouble:
		return 50
	case arg.Kind == index.TypeInt && param.Kind == index.TypeFloat:
		return 40
	case arg.Kind == index.TypeLong && param.Kind == index.TypeDouble:
		return 50
	case arg.Kind == index.TypeLong && param.Kind == index.TypeFloat:
		return 40
	case arg.Kind == index.TypeFloat && param.Kind == index.TypeDouble:
		return 50
	case arg.Kind == index.TypeDouble && param.Kind == index.TypeFloat:
		return -100
	case arg.Kind == index.TypeDouble && param.Kind == index.TypeInt:
		return -100
	default:
		// Includes the Class-vs-non-Class case: arg.Kind == param.Kind
		// already handled every genuine Class/Class pair above, so a
		// Class on exactly one side is an unnamed row in spec.md §4.F's
		// table and falls to the table's "otherwise" entry.
		return -100
	}
}

// scoreCandidate sums scorePair across the fixed parameters, then
// scores any surplus varargs arguments against the varargs element
// type; any single pair scoring negative rejects the whole candidate.
func scoreCandidate(args []index.InferredType, c overloadCandidate) (int, bool) {
	fixed := c.ParamCount
	if c.IsVarargs {
		fixed--
	}
	if fixed < 0 {
		fixed = 0
	}
	if c.IsVarargs {
		if len(args) < fixed {
			return 0, false
		}
	} else if len(args) != c.ParamCount {
		return 0, false
	}

	total := 0
	for i := 0; i < fixed; i++ {
		p := index.InferredType{Kind: index.TypeUnknown}
		if i < len(c.ParamTypes) {
			p = c.ParamTypes[i]
		}
		s := scorePair(args[i], p)
		if s < 0 {
			return 0, false
		}
		total += s
	}
	if c.IsVarargs && len(c.ParamTypes) > 0 {
		varargType := c.ParamTypes[len(c.ParamTypes)-1]
		for i := fixed; i < len(args); i++ {
			s := scorePair(args[i], varargType)
			if s < 0 {
				return 0, false
			}
			total += s
		}
	}
	return total, true
}

// pickBestOverload scores every candidate against args and returns the
// index of the winner under the tie-break order in spec.md §4.F:
// non-varargs first, then higher score, then closer arity, then URI
// scheme preference.
type scoredCandidate struct {
	idx   int
	score int
}

func pickBestOverload(args []index.InferredType, candidates []overloadCandidate) (int, bool) {
	var survivors []scoredCandidate
	for i, c := range candidates {
		s, ok := scoreCandidate(args, c)
		if !ok {
			continue
		}
		survivors = append(survivors, scoredCandidate{idx: i, score: s})
	}
	if len(survivors) == 0 {
		return -1, false
	}

	best := survivors[0]
	for _, s := range survivors[1:] {
		if better(s, best, args, candidates) {
			best = s
		}
	}
	return best.idx, true
}

func better(a, b scoredCandidate, args []index.InferredType, candidates []overloadCandidate) bool {
	ca, cb := candidates[a.idx], candidates[b.idx]
	if ca.IsVarargs != cb.IsVarargs {
		return !ca.IsVarargs
	}
	if a.score != b.score {
		return a.score > b.score
	}
	da := abs(ca.ParamCount - len(args))
	db := abs(cb.ParamCount - len(args))
	if da != db {
		return da < db
	}
	ua, ub := uriClass(ca.URI), uriClass(cb.URI)
	return ua < ub
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
