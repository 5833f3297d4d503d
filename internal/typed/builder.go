// Package typed provides a pipeline builder that proves handler adjacency
// at compile time instead of relying solely on the runtime pipeline's
// reflect-based check.
//
// The trick is Go's lack of associated types: there is no way to write a
// Rust-style `AssertEqual<Prev::Rout, H::Rin>` bound directly. Instead,
// Builder tracks the two types the *next* handler is required to have —
// NextRin (what the previous stage emits inbound) and NextWinTarget (what
// the previous stage expects back outbound) — as type parameters of the
// builder itself. AddBack's signature pins the handler's Rin/Wout to those
// exact type parameters, so a mismatched handler fails to unify during
// type inference and the call does not compile. Build pins both remaining
// parameters to W, so finishing a builder whose last stage doesn't land on
// the pipeline's outbound boundary also fails to compile.
//
// FrontBuilder/AddFront/BuildFront mirror the same trick growing the chain
// from the head instead of the tail, for callers that need to reason about
// a pipeline head-first (spec.md §4.3's "symmetric head-side constraints").
package typed

import (
	"github.com/wireflow/wireflow/internal/handler"
	"github.com/wireflow/wireflow/internal/pipeline"
)

// Builder accumulates handlers for a Pipeline[R, W]. NextRin and
// NextWinTarget describe the Rin/Wout a handler appended right now must
// have; they start out equal to R and R — an empty pipeline stands in for
// the transport boundary itself, which reads R and, symmetrically, must
// get R back out of whatever handler sits at the head — and are updated by
// every AddBack call to the just-appended handler's Rout/Win, so the
// following handler's Wout is pinned to its predecessor's Win.
type Builder[R, W, NextRin, NextWinTarget any] struct {
	p *pipeline.Pipeline[R, W]
}

// New starts a builder for a pipeline whose transport boundary reads R and
// writes W.
func New[R, W any]() *Builder[R, W, R, R] {
	return &Builder[R, W, R, R]{p: pipeline.New[R, W]()}
}

// AddBack appends a handler to the back of the pipeline under construction.
// Its Rin must equal the current builder's NextRin and its Wout must equal
// NextWinTarget — if either doesn't hold, this call fails to compile rather
// than panicking at Finalize time. The returned builder's NextRin/NextWinTarget
// become the new handler's Rout/Win, ready for the next AddBack or Build.
func AddBack[R, W, NextRin, NextWinTarget, Rout, Win any](
	b *Builder[R, W, NextRin, NextWinTarget],
	h handler.Handler[NextRin, Rout, Win, NextWinTarget],
) *Builder[R, W, Rout, Win] {
	b.p.AddBack(pipeline.Wrap[NextRin, Rout, Win, NextWinTarget](h))
	return &Builder[R, W, Rout, Win]{p: b.p}
}

// Build finalizes the pipeline. It only accepts a builder whose last
// appended handler lands exactly on the pipeline's outbound boundary
// (Rout == W and Win == W); an incomplete or mis-terminated chain fails to
// compile here rather than panicking inside Finalize.
func Build[R, W any](b *Builder[R, W, W, W]) *pipeline.Pipeline[R, W] {
	return b.p.Finalize()
}

// AsUntyped returns the pipeline accumulated so far, escaping the
// compile-time proof for callers that need AddFront or another operation
// the typed builder doesn't expose. The returned pipeline is the same
// instance AddBack has been mutating, not a copy.
func (b *Builder[R, W, NextRin, NextWinTarget]) AsUntyped() *pipeline.Pipeline[R, W] {
	return b.p
}

// FrontBuilder is the dual of Builder: it grows the chain from the head
// backwards instead of from the tail forwards. PrevRout/PrevWin track the
// Rout/Win the next handler prepended with AddFront must carry — i.e. the
// Rin/Wout of the handler currently at the front, or the tail boundary W/W
// for an empty builder, since the first handler AddFront attaches to an
// empty pipeline is provisionally both head and tail.
type FrontBuilder[R, W, PrevRout, PrevWin any] struct {
	p *pipeline.Pipeline[R, W]
}

// NewFront starts a FrontBuilder for a pipeline whose transport boundary
// reads R and writes W.
func NewFront[R, W any]() *FrontBuilder[R, W, W, W] {
	return &FrontBuilder[R, W, W, W]{p: pipeline.New[R, W]()}
}

// AddFront prepends a handler to the front of the pipeline under
// construction, proving at compile time that its Rout/Win match what the
// current front handler (or, for an empty builder, the tail boundary)
// requires.
func AddFront[R, W, PrevRout, PrevWin, Rin, Wout any](
	b *FrontBuilder[R, W, PrevRout, PrevWin],
	h handler.Handler[Rin, PrevRout, PrevWin, Wout],
) *FrontBuilder[R, W, Rin, Wout] {
	b.p.AddFront(pipeline.Wrap[Rin, PrevRout, PrevWin, Wout](h))
	return &FrontBuilder[R, W, Rin, Wout]{p: b.p}
}

// BuildFront finalizes a FrontBuilder into a Pipeline, requiring the
// frontmost (head) handler to land exactly on the pipeline's inbound
// boundary — the symmetric counterpart to Build's outbound check.
func BuildFront[R, W any](b *FrontBuilder[R, W, R, R]) *pipeline.Pipeline[R, W] {
	return b.p.Finalize()
}

// AsUntyped exposes the pipeline under construction for escape-hatch use
// alongside AddBack/AddFront on the untyped pipeline.Pipeline directly.
func (b *FrontBuilder[R, W, PrevRout, PrevWin]) AsUntyped() *pipeline.Pipeline[R, W] {
	return b.p
}
