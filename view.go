package ecs

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// defaultParallelChunk is the driver-range chunk size used by EachParallel
// when the caller passes zero.
const defaultParallelChunk = 64

// View iterates over live entities holding component A. View2, View3 and
// View4 extend the same shape to more component types; fixed arities stand in
// for the variadic form Go cannot express.
//
// A view walks the packed array of its driver, the smallest participating
// array chosen once at construction, and filters out entities that died or
// lack one of the other required components. Iteration allocates nothing.
//
// Views are snapshots of the array handles, not of their contents: structural
// mutation (Add/Remove/Destroy) of a participating array while iterating is
// undefined behavior, by caller contract. Defer such mutations through a
// CommandQueue instead.
type View[A any] struct {
	em *EntityManager
	a  *ComponentArray[A]
}

// NewView builds a view over component A.
func NewView[A any](reg *ComponentRegistry, em *EntityManager) (*View[A], error) {
	a, err := GetComponentArray[A](reg)
	if err != nil {
		return nil, err
	}
	return &View[A]{em: em, a: a}, nil
}

// Size returns the driver array length: an upper bound on the entities the
// view will actually yield.
func (v *View[A]) Size() int {
	return v.a.Len()
}

// ForRange applies fn to every qualifying entity whose driver index falls in
// [begin, end), clamped to the driver size. This is the primitive behind
// chunked parallel consumption; it materializes no entity list.
func (v *View[A]) ForRange(begin, end int, fn func(Entity, *A)) {
	begin, end = clampRange(begin, end, v.Size())
	for i := begin; i < end; i++ {
		e := v.a.owners[i]
		if !v.em.IsAlive(e) {
			continue
		}
		fn(e, &v.a.dense[i])
	}
}

// Each applies fn to every qualifying entity.
func (v *View[A]) Each(fn func(Entity, *A)) {
	v.ForRange(0, v.Size(), fn)
}

// EachParallel partitions the driver range into chunks and runs them on an
// errgroup bounded by GOMAXPROCS. Callers own the safety contract: fn must
// not structurally mutate any participating array, and concurrent writes to
// the same entity's component are races. chunk <= 0 selects a default.
func (v *View[A]) EachParallel(ctx context.Context, chunk int, fn func(Entity, *A)) error {
	return parallelRanges(ctx, v.Size(), chunk, func(begin, end int) {
		v.ForRange(begin, end, fn)
	})
}

// View2 iterates over live entities holding components A and B.
type View2[A, B any] struct {
	em     *EntityManager
	a      *ComponentArray[A]
	b      *ComponentArray[B]
	driver int
}

// NewView2 builds a view over components A and B.
func NewView2[A, B any](reg *ComponentRegistry, em *EntityManager) (*View2[A, B], error) {
	a, err := GetComponentArray[A](reg)
	if err != nil {
		return nil, err
	}
	b, err := GetComponentArray[B](reg)
	if err != nil {
		return nil, err
	}
	v := &View2[A, B]{em: em, a: a, b: b}
	if b.Len() < a.Len() {
		v.driver = 1
	}
	return v, nil
}

// Size returns the driver array length.
func (v *View2[A, B]) Size() int {
	if v.driver == 1 {
		return v.b.Len()
	}
	return v.a.Len()
}

// ForRange applies fn to every qualifying entity whose driver index falls in
// [begin, end), clamped to the driver size.
func (v *View2[A, B]) ForRange(begin, end int, fn func(Entity, *A, *B)) {
	begin, end = clampRange(begin, end, v.Size())
	if v.driver == 1 {
		for i := begin; i < end; i++ {
			e := v.b.owners[i]
			if !v.em.IsAlive(e) {
				continue
			}
			pa, ok := v.a.Get(e)
			if !ok {
				continue
			}
			fn(e, pa, &v.b.dense[i])
		}
		return
	}
	for i := begin; i < end; i++ {
		e := v.a.owners[i]
		if !v.em.IsAlive(e) {
			continue
		}
		pb, ok := v.b.Get(e)
		if !ok {
			continue
		}
		fn(e, &v.a.dense[i], pb)
	}
}

// Each applies fn to every qualifying entity.
func (v *View2[A, B]) Each(fn func(Entity, *A, *B)) {
	v.ForRange(0, v.Size(), fn)
}

// EachParallel runs the view in driver-range chunks on an errgroup. See
// View.EachParallel for the caller contract.
func (v *View2[A, B]) EachParallel(ctx context.Context, chunk int, fn func(Entity, *A, *B)) error {
	return parallelRanges(ctx, v.Size(), chunk, func(begin, end int) {
		v.ForRange(begin, end, fn)
	})
}

// View3 iterates over live entities holding components A, B and C.
type View3[A, B, C any] struct {
	em     *EntityManager
	a      *ComponentArray[A]
	b      *ComponentArray[B]
	c      *ComponentArray[C]
	driver int
}

// NewView3 builds a view over components A, B and C.
func NewView3[A, B, C any](reg *ComponentRegistry, em *EntityManager) (*View3[A, B, C], error) {
	a, err := GetComponentArray[A](reg)
	if err != nil {
		return nil, err
	}
	b, err := GetComponentArray[B](reg)
	if err != nil {
		return nil, err
	}
	c, err := GetComponentArray[C](reg)
	if err != nil {
		return nil, err
	}
	v := &View3[A, B, C]{em: em, a: a, b: b, c: c}
	v.driver = smallestOf(a.Len(), b.Len(), c.Len())
	return v, nil
}

// Size returns the driver array length.
func (v *View3[A, B, C]) Size() int {
	switch v.driver {
	case 1:
		return v.b.Len()
	case 2:
		return v.c.Len()
	default:
		return v.a.Len()
	}
}

// ForRange applies fn to every qualifying entity whose driver index falls in
// [begin, end), clamped to the driver size.
func (v *View3[A, B, C]) ForRange(begin, end int, fn func(Entity, *A, *B, *C)) {
	begin, end = clampRange(begin, end, v.Size())
	for i := begin; i < end; i++ {
		var e Entity
		switch v.driver {
		case 1:
			e = v.b.owners[i]
		case 2:
			e = v.c.owners[i]
		default:
			e = v.a.owners[i]
		}
		if !v.em.IsAlive(e) {
			continue
		}
		pa, ok := v.a.Get(e)
		if !ok {
			continue
		}
		pb, ok := v.b.Get(e)
		if !ok {
			continue
		}
		pc, ok := v.c.Get(e)
		if !ok {
			continue
		}
		fn(e, pa, pb, pc)
	}
}

// Each applies fn to every qualifying entity.
func (v *View3[A, B, C]) Each(fn func(Entity, *A, *B, *C)) {
	v.ForRange(0, v.Size(), fn)
}

// EachParallel runs the view in driver-range chunks on an errgroup. See
// View.EachParallel for the caller contract.
func (v *View3[A, B, C]) EachParallel(ctx context.Context, chunk int, fn func(Entity, *A, *B, *C)) error {
	return parallelRanges(ctx, v.Size(), chunk, func(begin, end int) {
		v.ForRange(begin, end, fn)
	})
}

// View4 iterates over live entities holding components A, B, C and D.
type View4[A, B, C, D any] struct {
	em     *EntityManager
	a      *ComponentArray[A]
	b      *ComponentArray[B]
	c      *ComponentArray[C]
	d      *ComponentArray[D]
	driver int
}

// NewView4 builds a view over components A, B, C and D.
func NewView4[A, B, C, D any](reg *ComponentRegistry, em *EntityManager) (*View4[A, B, C, D], error) {
	a, err := GetComponentArray[A](reg)
	if err != nil {
		return nil, err
	}
	b, err := GetComponentArray[B](reg)
	if err != nil {
		return nil, err
	}
	c, err := GetComponentArray[C](reg)
	if err != nil {
		return nil, err
	}
	d, err := GetComponentArray[D](reg)
	if err != nil {
		return nil, err
	}
	v := &View4[A, B, C, D]{em: em, a: a, b: b, c: c, d: d}
	v.driver = smallestOf(a.Len(), b.Len(), c.Len(), d.Len())
	return v, nil
}

// Size returns the driver array length.
func (v *View4[A, B, C, D]) Size() int {
	switch v.driver {
	case 1:
		return v.b.Len()
	case 2:
		return v.c.Len()
	case 3:
		return v.d.Len()
	default:
		return v.a.Len()
	}
}

// ForRange applies fn to every qualifying entity whose driver index falls in
// [begin, end), clamped to the driver size.
func (v *View4[A, B, C, D]) ForRange(begin, end int, fn func(Entity, *A, *B, *C, *D)) {
	begin, end = clampRange(begin, end, v.Size())
	for i := begin; i < end; i++ {
		var e Entity
		switch v.driver {
		case 1:
			e = v.b.owners[i]
		case 2:
			e = v.c.owners[i]
		case 3:
			e = v.d.owners[i]
		default:
			e = v.a.owners[i]
		}
		if !v.em.IsAlive(e) {
			continue
		}
		pa, ok := v.a.Get(e)
		if !ok {
			continue
		}
		pb, ok := v.b.Get(e)
		if !ok {
			continue
		}
		pc, ok := v.c.Get(e)
		if !ok {
			continue
		}
		pd, ok := v.d.Get(e)
		if !ok {
			continue
		}
		fn(e, pa, pb, pc, pd)
	}
}

// Each applies fn to every qualifying entity.
func (v *View4[A, B, C, D]) Each(fn func(Entity, *A, *B, *C, *D)) {
	v.ForRange(0, v.Size(), fn)
}

// EachParallel runs the view in driver-range chunks on an errgroup. See
// View.EachParallel for the caller contract.
func (v *View4[A, B, C, D]) EachParallel(ctx context.Context, chunk int, fn func(Entity, *A, *B, *C, *D)) error {
	return parallelRanges(ctx, v.Size(), chunk, func(begin, end int) {
		v.ForRange(begin, end, fn)
	})
}

func clampRange(begin, end, size int) (int, int) {
	if begin < 0 {
		begin = 0
	}
	if end > size {
		end = size
	}
	if begin > end {
		begin = end
	}
	return begin, end
}

func smallestOf(lens ...int) int {
	driver := 0
	for i := 1; i < len(lens); i++ {
		if lens[i] < lens[driver] {
			driver = i
		}
	}
	return driver
}

func parallelRanges(ctx context.Context, size, chunk int, run func(begin, end int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if size == 0 {
		return nil
	}
	if chunk <= 0 {
		chunk = defaultParallelChunk
	}
	if size <= chunk {
		run(0, size)
		return ctx.Err()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for begin := 0; begin < size; begin += chunk {
		end := begin + chunk
		if end > size {
			end = size
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			run(begin, end)
			return nil
		})
	}
	return g.Wait()
}
