package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrNoProduction        = newSemanticError("a grammar needs at least one production")
	semErrDuplicateProduction = newSemanticError("duplicate production")
	semErrMalformedProduction = newSemanticError("malformed production")
	semErrLL1Conflict         = newSemanticError("a grammar is not LL(1)")
)
