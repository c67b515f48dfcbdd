// Package diag provides the diagnostic value and verbose-trace logger shared
// by every compiler stage, so that lexical, parse, type, code-gen, and tool
// errors all report through one "file:line:col: message" shape.
package diag

import (
	"fmt"

	"github.com/j4n1x/jlang/internal/token"
)

// Stage identifies which pipeline stage raised a Diagnostic.
type Stage string

const (
	StageLex     Stage = "lex"
	StageParse   Stage = "parse"
	StageType    Stage = "type"
	StageCodegen Stage = "codegen"
	StageTool    Stage = "tool"
)

// Diagnostic is a located compiler error.
type Diagnostic struct {
	Stage Stage
	Pos   token.Pos
	Msg   string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Msg)
}

// Errorf builds a Diagnostic from a stage, a source position, and a
// printf-style message.
func Errorf(stage Stage, pos token.Pos, format string, args ...any) *Diagnostic {
	return &Diagnostic{Stage: stage, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
