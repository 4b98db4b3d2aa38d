package compiler

// NumVars is the number of variables the language knows about.
const NumVars = 3

// WordSize is the byte stride between variable slots in memory.
const WordSize = 4

// varNames maps a variable index to its source name. The index doubles as
// the memory slot: the address of a variable is index*WordSize.
var varNames = [NumVars]rune{'x', 'y', 'z'}

// varIndex resolves a source letter to its variable index.
func varIndex(r rune) (int, bool) {
	for i, name := range varNames {
		if name == r {
			return i, true
		}
	}
	return 0, false
}

// VarName returns the source name of variable idx.
func VarName(idx int) string {
	if idx < 0 || idx >= NumVars {
		return "?"
	}
	return string(varNames[idx])
}

// VarAddr returns the memory address of variable idx.
func VarAddr(idx int) int {
	return idx * WordSize
}
