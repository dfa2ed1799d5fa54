// Package find implements the embedded expression language of the
// `find` command (spec §4.5): a recursive-descent parser with POSIX
// operator precedence producing a small boolean-expression AST, and a
// pre-order traversal evaluator. Traversal style is grounded on
// rcarmo-go-busybox's pkg/applets/find/find.go (walkRecursive/match
// combinator shape), rebuilt against vfs.FileSystem and the AST/
// precedence rules spec.md names explicitly.
package find

// Expr is a node of the find predicate language.
type Expr interface {
	isExpr()
}

// True is the implicit root predicate when none are given.
type True struct{}

func (True) isExpr() {}

// And is "-a"/"-and"/implicit-adjacency: short-circuits when Left is
// false.
type And struct{ Left, Right Expr }

func (And) isExpr() {}

// Or is "-o"/"-or": short-circuits when Left is true.
type Or struct{ Left, Right Expr }

func (Or) isExpr() {}

// Not is "!"/"-not": negates X.
type Not struct{ X Expr }

func (Not) isExpr() {}

// Name is "-name <glob>": matches against the basename only.
type Name struct{ Pattern string }

func (Name) isExpr() {}

// Type is "-type f|d".
type Type struct{ Kind byte } // 'f' or 'd'

func (Type) isExpr() {}

// MaxDepth is "-maxdepth N". It always evaluates true; its only effect
// is to cap DFS descent, collected once up front by Parse.
type MaxDepth struct{ N int }

func (MaxDepth) isExpr() {}

// Exec is "-exec cmd args... ;" (or "-exec cmd args... {} +", which
// this implementation treats identically to ";", invoking once per
// matched path). {} in Args is substituted with the current path.
// A "+" ends the command only directly after "{}"; anywhere else it is
// an ordinary argument.
type Exec struct {
	Args []string
}

func (Exec) isExpr() {}
