package ecs

// smallest returns the index of the shortest length.
func smallest(lens ...int) int {
	which := 0
	for i, n := range lens {
		if n < lens[which] {
			which = i
		}
	}
	return which
}

// Join2 iterates over entities that have both component A and B.
// It walks the ids of the smaller store and checks membership in every view
// before looking values up, so mutable views only flag full matches.
func Join2[A, B any](va View[A], vb View[B], fn func(EntityID, *A, *B)) {
	va.borrow()
	vb.borrow()
	defer va.release()
	defer vb.release()

	visit := func(id EntityID) bool {
		if !va.Has(id) || !vb.Has(id) {
			return true
		}
		a, _ := va.Lookup(id)
		b, _ := vb.Lookup(id)
		fn(id, a, b)
		return true
	}
	if smallest(va.Len(), vb.Len()) == 0 {
		va.eachID(visit)
		return
	}
	vb.eachID(visit)
}

// Join3 iterates over entities that have components A, B, and C.
func Join3[A, B, C any](va View[A], vb View[B], vc View[C], fn func(EntityID, *A, *B, *C)) {
	va.borrow()
	vb.borrow()
	vc.borrow()
	defer va.release()
	defer vb.release()
	defer vc.release()

	visit := func(id EntityID) bool {
		if !va.Has(id) || !vb.Has(id) || !vc.Has(id) {
			return true
		}
		a, _ := va.Lookup(id)
		b, _ := vb.Lookup(id)
		c, _ := vc.Lookup(id)
		fn(id, a, b, c)
		return true
	}
	switch smallest(va.Len(), vb.Len(), vc.Len()) {
	case 0:
		va.eachID(visit)
	case 1:
		vb.eachID(visit)
	default:
		vc.eachID(visit)
	}
}

// Join4 iterates over entities that have components A, B, C and D.
func Join4[A, B, C, D any](va View[A], vb View[B], vc View[C], vd View[D], fn func(EntityID, *A, *B, *C, *D)) {
	va.borrow()
	vb.borrow()
	vc.borrow()
	vd.borrow()
	defer va.release()
	defer vb.release()
	defer vc.release()
	defer vd.release()

	visit := func(id EntityID) bool {
		if !va.Has(id) || !vb.Has(id) || !vc.Has(id) || !vd.Has(id) {
			return true
		}
		a, _ := va.Lookup(id)
		b, _ := vb.Lookup(id)
		c, _ := vc.Lookup(id)
		d, _ := vd.Lookup(id)
		fn(id, a, b, c, d)
		return true
	}
	switch smallest(va.Len(), vb.Len(), vc.Len(), vd.Len()) {
	case 0:
		va.eachID(visit)
	case 1:
		vb.eachID(visit)
	case 2:
		vc.eachID(visit)
	default:
		vd.eachID(visit)
	}
}
