package linear

import "math"

// Q is a quaternion of float32.
type Q struct {
	V V3
	R float32
}

// Mul sets q to contain l . r.
func (q *Q) Mul(l, r *Q) {
	var v, w V3
	v.Scale(r.R, &l.V)
	w.Scale(l.R, &r.V)
	v.Add(&v, &w)
	w.Cross(&l.V, &r.V)
	d := l.V.Dot(&r.V)
	q.V.Add(&v, &w)
	q.R = l.R*r.R - d
}

// Norm sets q to contain p normalized.
func (q *Q) Norm(p *Q) {
	len := float32(math.Sqrt(float64(p.V.Dot(&p.V) + p.R*p.R)))
	inv := 1 / len
	q.V.Scale(inv, &p.V)
	q.R = p.R * inv
}

// Mat4 returns the rotation matrix equivalent to q.
func (q *Q) Mat4() M4 {
	x, y, z, w := q.V[0], q.V[1], q.V[2], q.R
	var m M4
	m.I()
	m[0][0] = 1 - 2*(y*y+z*z)
	m[0][1] = 2 * (x*y + z*w)
	m[0][2] = 2 * (x*z - y*w)
	m[1][0] = 2 * (x*y - z*w)
	m[1][1] = 1 - 2*(x*x+z*z)
	m[1][2] = 2 * (y*z + x*w)
	m[2][0] = 2 * (x*z + y*w)
	m[2][1] = 2 * (y*z - x*w)
	m[2][2] = 1 - 2*(x*x+y*y)
	return m
}
