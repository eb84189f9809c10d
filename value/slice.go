package value

import "strconv"

// Slice is the triple (start, stop, step) of spec §3. Each bound is
// optional; a nil pointer means "absent". Step defaults to 1.
type Slice struct {
	Start *int64
	Stop  *int64
	Step  *int64
}

func (s *Slice) Type() string { return "slice" }

func (s *Slice) String() string {
	out := ""
	if s.Start != nil {
		out += strconv.FormatInt(*s.Start, 10) + " "
	}
	out += ":"
	if s.Stop != nil {
		out += " " + strconv.FormatInt(*s.Stop, 10)
	}
	step := s.step()
	if step != 1 {
		out += " : " + strconv.FormatInt(step, 10)
	}
	return out
}

func (s *Slice) Truthy() bool { return true }

func (s *Slice) step() int64 {
	if s.Step == nil {
		return 1
	}
	return *s.Step
}

func i64(v int64) *int64 { return &v }

// Shift returns a new Slice with delta added to Start and Stop
// (whichever are present), matching spec §3 "+/- of a scalar".
func (s *Slice) Shift(delta int64) *Slice {
	out := &Slice{Step: s.Step}
	if s.Start != nil {
		out.Start = i64(*s.Start + delta)
	}
	if s.Stop != nil {
		out.Stop = i64(*s.Stop + delta)
	}
	return out
}

// indices normalizes this slice against a collection of the given
// length, following Python's slice.indices(length) algorithm: negative
// bounds count from the end, and missing bounds default to the start
// or end of the range depending on the step's sign.
func (s *Slice) indices(length int64) (start, stop, step int64) {
	step = s.step()
	if step == 0 {
		step = 1
	}

	clamp := func(v, lo, hi int64) int64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	normalize := func(v int64) int64 {
		if v < 0 {
			v += length
		}
		return v
	}

	if step > 0 {
		if s.Start == nil {
			start = 0
		} else {
			start = clamp(normalize(*s.Start), 0, length)
		}
		if s.Stop == nil {
			stop = length
		} else {
			stop = clamp(normalize(*s.Stop), 0, length)
		}
	} else {
		if s.Start == nil {
			start = length - 1
		} else {
			start = clamp(normalize(*s.Start), -1, length-1)
		}
		if s.Stop == nil {
			stop = -1
		} else {
			stop = clamp(normalize(*s.Stop), -1, length-1)
		}
	}
	return start, stop, step
}

// Range materializes the slice into concrete 0-based indices over a
// collection of the given length, per spec invariant 4:
// "(a:b:c) with integer a,b,c materialized via Matrix(Slice) equals
// the list [a, a+c, ...] up to but excluding b."
func (s *Slice) Range(length int64) []int64 {
	start, stop, step := s.indices(length)
	var out []int64
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, i)
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, i)
		}
	}
	return out
}
