// Package token defines the lexical vocabulary of jlang: source positions,
// the token record, and the reserved-word tables the lexer classifies words
// against.
package token

import "fmt"

// Pos is a source location: the file it came from plus a 1-based line and
// column. Every token and every AST node carries one for diagnostics and for
// code-gen label naming.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Kind tags the syntactic category of a token.
type Kind int

const (
	KindKeyword Kind = iota
	KindIntrinsic
	KindIdentifier
	KindIntLiteral
	KindStringLiteral
	KindOperator
	KindSyscall
	KindParenOpen
	KindParenClose
	KindArgDelimiter
	KindEndOfExpression
	KindTypeName
)

func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindIntrinsic:
		return "intrinsic"
	case KindIdentifier:
		return "identifier"
	case KindIntLiteral:
		return "int-literal"
	case KindStringLiteral:
		return "string-literal"
	case KindOperator:
		return "operator"
	case KindSyscall:
		return "syscall"
	case KindParenOpen:
		return "paren-open"
	case KindParenClose:
		return "paren-close"
	case KindArgDelimiter:
		return "arg-delimiter"
	case KindEndOfExpression:
		return "end-of-expression"
	case KindTypeName:
		return "type-name"
	default:
		return "unknown"
	}
}

// Keyword enumerates the reserved words of the grammar (spec.md §3).
type Keyword int

const (
	KwIf Keyword = iota
	KwWhile
	KwFunction
	KwDefine
	KwAllocate
	KwConstant
	KwDo
	KwIs
	KwAs
	KwTo
	KwYields
	KwDone
	KwReturn
	KwImport
)

var keywordNames = map[Keyword]string{
	KwIf:       "if",
	KwWhile:    "while",
	KwFunction: "function",
	KwDefine:   "define",
	KwAllocate: "allocate",
	KwConstant: "constant",
	KwDo:       "do",
	KwIs:       "is",
	KwAs:       "as",
	KwTo:       "to",
	KwYields:   "yields",
	KwDone:     "done",
	KwReturn:   "return",
	KwImport:   "import",
}

// Keywords maps reserved-word text to its Keyword tag.
var Keywords = func() map[string]Keyword {
	m := make(map[string]Keyword, len(keywordNames))
	for k, name := range keywordNames {
		m[name] = k
	}
	return m
}()

func (k Keyword) String() string { return keywordNames[k] }

// Intrinsic enumerates the built-in operations that are not infix operators.
type Intrinsic int

const (
	IntrPrint Intrinsic = iota
	IntrAddressOf
	IntrDrop
	IntrLoad8
	IntrLoad16
	IntrLoad32
	IntrLoad64
	IntrStore8
	IntrStore16
	IntrStore32
	IntrStore64
)

var intrinsicNames = map[Intrinsic]string{
	IntrPrint:     "print",
	IntrAddressOf: "address-of",
	IntrDrop:      "drop",
	IntrLoad8:     "load8",
	IntrLoad16:    "load16",
	IntrLoad32:    "load32",
	IntrLoad64:    "load64",
	IntrStore8:    "store8",
	IntrStore16:   "store16",
	IntrStore32:   "store32",
	IntrStore64:   "store64",
}

// Intrinsics maps reserved intrinsic text to its tag.
var Intrinsics = func() map[string]Intrinsic {
	m := make(map[string]Intrinsic, len(intrinsicNames))
	for k, name := range intrinsicNames {
		m[name] = k
	}
	return m
}()

func (i Intrinsic) String() string { return intrinsicNames[i] }

// LoadSize and StoreSize return the access width rank (0..3 for 8/16/32/64
// bits) for sized-intrinsic tokens, and ok=false for any other intrinsic.
func (i Intrinsic) LoadSize() (rank int, ok bool) {
	switch i {
	case IntrLoad8:
		return 0, true
	case IntrLoad16:
		return 1, true
	case IntrLoad32:
		return 2, true
	case IntrLoad64:
		return 3, true
	}
	return 0, false
}

func (i Intrinsic) StoreSize() (rank int, ok bool) {
	switch i {
	case IntrStore8:
		return 0, true
	case IntrStore16:
		return 1, true
	case IntrStore32:
		return 2, true
	case IntrStore64:
		return 3, true
	}
	return 0, false
}

// Operator enumerates the binary operator words.
type Operator int

const (
	OpPlus Operator = iota
	OpMinus
	OpMultiply
	OpDivide
	OpModulo
	OpGreater
	OpLess
	OpEqual
	OpNotEqual
	OpGreaterEqual
	OpLessEqual
)

var operatorNames = map[Operator]string{
	OpPlus:         "plus",
	OpMinus:        "minus",
	OpMultiply:     "multiply",
	OpDivide:       "divide",
	OpModulo:       "modulo",
	OpGreater:      "greater",
	OpLess:         "less",
	OpEqual:        "equal",
	OpNotEqual:     "not-equal",
	OpGreaterEqual: "greater-equal",
	OpLessEqual:    "less-equal",
}

// Operators maps reserved operator text to its tag.
var Operators = func() map[string]Operator {
	m := make(map[string]Operator, len(operatorNames))
	for k, name := range operatorNames {
		m[name] = k
	}
	return m
}()

func (o Operator) String() string { return operatorNames[o] }

// Precedence returns the binding power used by the parser's precedence
// climbing (spec.md §3): multiply/divide/modulo bind tightest, then
// plus/minus, then comparisons. All operators are left-associative.
func (o Operator) Precedence() int {
	switch o {
	case OpMultiply, OpDivide, OpModulo:
		return 30
	case OpPlus, OpMinus:
		return 20
	default:
		return 10
	}
}

// IsComparison reports whether o is one of the six comparison operators.
func (o Operator) IsComparison() bool {
	switch o {
	case OpGreater, OpLess, OpEqual, OpNotEqual, OpGreaterEqual, OpLessEqual:
		return true
	}
	return false
}

// TypeName enumerates the declarable types.
type TypeName int

const (
	TypeNone TypeName = iota
	TypeInteger
	TypePointer
)

var typeNames = map[TypeName]string{
	TypeNone:    "none",
	TypeInteger: "integer",
	TypePointer: "pointer",
}

// TypeNames maps reserved type text to its tag.
var TypeNames = func() map[string]TypeName {
	m := make(map[string]TypeName, len(typeNames))
	for k, name := range typeNames {
		m[name] = k
	}
	return m
}()

func (t TypeName) String() string { return typeNames[t] }

// Size returns the in-memory width of a scalar of this type, in bytes.
func (t TypeName) Size() int {
	switch t {
	case TypeInteger, TypePointer:
		return 8
	default:
		return 0
	}
}

// Syscalls maps "syscall0".."syscall5" to their arity.
var Syscalls = map[string]int{
	"syscall0": 0,
	"syscall1": 1,
	"syscall2": 2,
	"syscall3": 3,
	"syscall4": 4,
	"syscall5": 5,
}

// Token is a single lexeme: its kind, raw text, source position, and a
// decoded value whose populated field depends on Kind.
type Token struct {
	Kind Kind
	Text string
	Pos  Pos

	Keyword      Keyword  // valid when Kind == KindKeyword
	Intrinsic    Intrinsic // valid when Kind == KindIntrinsic
	Operator     Operator // valid when Kind == KindOperator
	Type         TypeName // valid when Kind == KindTypeName
	SyscallArity int      // valid when Kind == KindSyscall
	IntValue     int64    // valid when Kind == KindIntLiteral
	StringValue  string   // valid when Kind == KindStringLiteral or KindIdentifier (decoded text)
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Pos, t.Kind, t.Text)
}
