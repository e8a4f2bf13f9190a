// Package elixir provides the semlix ontology: class and property IRIs for
// the triple builders, and dotted predicates registered with the semstreams
// vocabulary for the graph ingestion boundary. Internal code uses the IRIs;
// the dotted forms exist only at the NATS boundary.
package elixir

import "github.com/c360studio/semstreams/vocabulary"

// Code structure predicates for graph ingestion.
const (
	// CodeModuleName is the fully qualified module name.
	CodeModuleName = "code.module.name"

	// CodeModuleDoc is the module documentation string.
	CodeModuleDoc = "code.module.doc"

	// CodeModuleBehaviour links a module to a behaviour it declares.
	CodeModuleBehaviour = "code.module.behaviour"

	// CodeFunctionName is the bare function name.
	CodeFunctionName = "code.function.name"

	// CodeFunctionArity is the function arity.
	CodeFunctionArity = "code.function.arity"

	// CodeFunctionKind is the definition form: def, defp, defmacro.
	CodeFunctionKind = "code.function.kind"

	// CodeClauseOrder is the 1-indexed clause ordinal.
	CodeClauseOrder = "code.clause.order"

	// CodeClauseGuard records whether a clause carries a guard.
	CodeClauseGuard = "code.clause.guard"

	// CodeSupervisorStrategy is the supervision strategy.
	CodeSupervisorStrategy = "code.supervisor.strategy"

	// CodeChildID is a supervised child's id.
	CodeChildID = "code.child.id"

	// CodeChildPosition is a supervised child's 0-based position.
	CodeChildPosition = "code.child.position"

	// CodeQuotedUnquotes is the unquote count of a quote block.
	CodeQuotedUnquotes = "code.quoted.unquotes"

	// CodeSourceFile is the repo-relative source path.
	CodeSourceFile = "code.source.file"

	// CodeSourceLine is the 1-based source line.
	CodeSourceLine = "code.source.line"
)

// iriToDotted maps ontology IRIs to their boundary predicate. Only
// predicates with a dotted mapping cross the NATS boundary under that name;
// the rest are published under their raw IRI.
var iriToDotted = map[string]string{
	PropModuleName:          CodeModuleName,
	PropDoc:                 CodeModuleDoc,
	PropImplementsBehaviour: CodeModuleBehaviour,
	PropFunctionName:        CodeFunctionName,
	PropArity:               CodeFunctionArity,
	PropFunctionKind:        CodeFunctionKind,
	PropClauseOrder:         CodeClauseOrder,
	PropHasGuard:            CodeClauseGuard,
	PropStrategy:            CodeSupervisorStrategy,
	PropChildID:             CodeChildID,
	PropChildPosition:       CodeChildPosition,
	PropUnquoteCount:        CodeQuotedUnquotes,
	PropFile:                CodeSourceFile,
	PropLine:                CodeSourceLine,
}

// DottedForIRI returns the boundary predicate registered for an ontology
// IRI. ok is false when the IRI has no dotted mapping.
func DottedForIRI(iri string) (string, bool) {
	dotted, ok := iriToDotted[iri]
	return dotted, ok
}

func init() {
	vocabulary.Register(CodeModuleName,
		vocabulary.WithDescription("Fully qualified Elixir module name"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropModuleName))

	vocabulary.Register(CodeModuleDoc,
		vocabulary.WithDescription("Module documentation string"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropDoc))

	vocabulary.Register(CodeModuleBehaviour,
		vocabulary.WithDescription("Behaviour declared by the module"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropImplementsBehaviour))

	vocabulary.Register(CodeFunctionName,
		vocabulary.WithDescription("Bare function name"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropFunctionName))

	vocabulary.Register(CodeFunctionArity,
		vocabulary.WithDescription("Function arity"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(PropArity))

	vocabulary.Register(CodeFunctionKind,
		vocabulary.WithDescription("Definition form: def, defp, defmacro"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropFunctionKind))

	vocabulary.Register(CodeClauseOrder,
		vocabulary.WithDescription("1-indexed clause ordinal"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(PropClauseOrder))

	vocabulary.Register(CodeClauseGuard,
		vocabulary.WithDescription("Whether the clause carries a guard"),
		vocabulary.WithDataType("bool"),
		vocabulary.WithIRI(PropHasGuard))

	vocabulary.Register(CodeSupervisorStrategy,
		vocabulary.WithDescription("Supervision strategy (one_for_one, rest_for_one, one_for_all)"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropStrategy))

	vocabulary.Register(CodeChildID,
		vocabulary.WithDescription("Supervised child id"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropChildID))

	vocabulary.Register(CodeChildPosition,
		vocabulary.WithDescription("Supervised child 0-based list position"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(PropChildPosition))

	vocabulary.Register(CodeQuotedUnquotes,
		vocabulary.WithDescription("Unquote sites inside a quote block"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(PropUnquoteCount))

	vocabulary.Register(CodeSourceFile,
		vocabulary.WithDescription("Repo-relative source file path"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropFile))

	vocabulary.Register(CodeSourceLine,
		vocabulary.WithDescription("1-based source line"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(PropLine))
}
