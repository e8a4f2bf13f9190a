package elixir

// Namespace is the base IRI prefix for semlix ontology terms.
const Namespace = "https://semlix.dev/ontology/"

// Class IRIs define the types of code entities in the semlix ontology.
const (
	// ClassModule represents an Elixir module definition.
	ClassModule = Namespace + "Module"

	// ClassFunction represents a named function or macro, grouped across
	// its clauses.
	ClassFunction = Namespace + "Function"

	// ClassClause represents one clause of a multi-clause function.
	ClassClause = Namespace + "Clause"

	// ClassAnonymousFunction represents an fn -> end expression.
	ClassAnonymousFunction = Namespace + "AnonymousFunction"

	// ClassProtocol represents a defprotocol definition.
	ClassProtocol = Namespace + "Protocol"

	// ClassProtocolImpl represents a defimpl block.
	ClassProtocolImpl = Namespace + "ProtocolImpl"

	// ClassSupervisor represents a module that defines a supervision tree.
	ClassSupervisor = Namespace + "Supervisor"

	// ClassChildSpec represents one supervised child entry.
	ClassChildSpec = Namespace + "ChildSpec"

	// ClassStructField represents one defstruct field.
	ClassStructField = Namespace + "StructField"

	// ClassQuotedExpression represents a quote block.
	ClassQuotedExpression = Namespace + "QuotedExpression"
)

// Object property IRIs define relationships between entities.
const (
	// PropDefinesFunction links a module to its functions.
	PropDefinesFunction = Namespace + "definesFunction"

	// PropHasClause links a function to its clauses.
	PropHasClause = Namespace + "hasClause"

	// PropHasAnonymousFunction links a module to its fn expressions.
	PropHasAnonymousFunction = Namespace + "hasAnonymousFunction"

	// PropImplementsBehaviour links a module to a behaviour it declares.
	PropImplementsBehaviour = Namespace + "implementsBehaviour"

	// PropImplementsProtocol links a defimpl module to its protocol.
	PropImplementsProtocol = Namespace + "implementsProtocol"

	// PropHasField links a module to its struct fields.
	PropHasField = Namespace + "hasField"

	// PropHasChild links a supervisor to one child spec entity.
	PropHasChild = Namespace + "hasChild"

	// PropChildList links a supervisor to the ordered rdf list of its
	// child spec entities. The list encoding is authoritative for order.
	PropChildList = Namespace + "childList"

	// PropHasQuoted links a module to its quote blocks.
	PropHasQuoted = Namespace + "hasQuoted"
)

// Data property IRIs define literal-valued attributes.
const (
	// PropModuleName is the fully qualified module name.
	PropModuleName = Namespace + "moduleName"

	// PropFunctionName is the bare function name.
	PropFunctionName = Namespace + "functionName"

	// PropArity is the function arity (xsd:nonNegativeInteger).
	PropArity = Namespace + "arity"

	// PropFunctionKind is the definition form: def, defp, defmacro.
	PropFunctionKind = Namespace + "functionKind"

	// PropClauseOrder is the 1-indexed clause ordinal
	// (xsd:positiveInteger). The clause identifier path is 0-indexed; the
	// asymmetry is deliberate.
	PropClauseOrder = Namespace + "clauseOrder"

	// PropHasGuard records whether a clause carries a guard
	// (xsd:boolean, always emitted).
	PropHasGuard = Namespace + "hasGuard"

	// PropDoc is the attached documentation string.
	PropDoc = Namespace + "doc"

	// PropStrategy is the supervision strategy.
	PropStrategy = Namespace + "strategy"

	// PropChildID is a child spec's human-readable id.
	PropChildID = Namespace + "childId"

	// PropChildPosition is a child's 0-based list position
	// (xsd:nonNegativeInteger). Informational; the rdf list is the
	// ordering authority.
	PropChildPosition = Namespace + "childPosition"

	// PropStartModule is the module a child spec starts.
	PropStartModule = Namespace + "startModule"

	// PropFieldName is a struct field name.
	PropFieldName = Namespace + "fieldName"

	// PropFieldDefault is a struct field's default value rendered as text.
	PropFieldDefault = Namespace + "fieldDefault"

	// PropUnquoteCount is the number of unquote sites in a quote block
	// (xsd:nonNegativeInteger).
	PropUnquoteCount = Namespace + "unquoteCount"

	// PropSpliceCount is the number of unquote_splicing sites
	// (xsd:nonNegativeInteger).
	PropSpliceCount = Namespace + "spliceCount"

	// PropHygieneViolation names a var! hygiene escape in a quote block.
	PropHygieneViolation = Namespace + "hygieneViolation"

	// PropFile is the repo-relative source file path.
	PropFile = Namespace + "file"

	// PropLine is the 1-based source line (xsd:positiveInteger).
	PropLine = Namespace + "line"

	// PropColumn is the 1-based source column (xsd:positiveInteger).
	PropColumn = Namespace + "column"
)
