// Package frame holds the tabular dataset every pipeline stage consumes and
// produces. A Frame wraps a gota DataFrame whose columns are either float or
// string series; NA elements are the null cells. A Frame is never modified
// after construction; each operation returns a new Frame.
package frame

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var ErrMissingColumn = errors.New("missing column")

func missing(col string) error {
	return fmt.Errorf("%w %q", ErrMissingColumn, col)
}

// Frame is an ordered set of uniquely named columns.
type Frame struct {
	df  dataframe.DataFrame
	idx map[string]int
}

// New builds a Frame from cols and rows. Short rows are padded with nulls and
// long rows truncated to the column count. A column whose non-null cells are
// all numbers becomes a float series, anything else a string series.
// Duplicate names get gota's _0, _1 suffixes.
func New(cols []string, rows [][]Value) *Frame {
	if len(cols) == 0 {
		return Empty()
	}
	ss := make([]series.Series, len(cols))
	for j, c := range cols {
		vals := make([]Value, len(rows))
		for i, r := range rows {
			if j < len(r) {
				vals[i] = r[j]
			}
		}
		ss[j] = column(c, vals, kindOf(vals))
	}
	return wrap(dataframe.New(ss...))
}

func Empty() *Frame { return &Frame{idx: map[string]int{}} }

func wrap(df dataframe.DataFrame) *Frame {
	if df.Err != nil {
		// only reachable on a programming error: every caller checks
		// names and lengths before handing series to gota
		panic(fmt.Sprintf("frame: %v", df.Err))
	}
	f := &Frame{df: df, idx: make(map[string]int, df.Ncol())}
	for j, c := range df.Names() {
		f.idx[c] = j
	}
	return f
}

// fromDataFrame adopts a DataFrame produced by gota. Int and bool series are
// converted so the Frame holds only float and string columns.
func fromDataFrame(df dataframe.DataFrame) (*Frame, error) {
	if err := df.Error(); err != nil {
		return nil, err
	}
	if df.Ncol() == 0 {
		return Empty(), nil
	}
	out := df.Capply(func(s series.Series) series.Series {
		switch s.Type() {
		case series.Int:
			return series.New(s, series.Float, s.Name)
		case series.Bool:
			return series.New(s, series.String, s.Name)
		}
		return s
	})
	if err := out.Error(); err != nil {
		return nil, err
	}
	return wrap(out), nil
}

func (f *Frame) Columns() []string {
	if f == nil || f.df.Ncol() == 0 {
		return nil
	}
	return f.df.Names()
}

func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return f.df.Nrow()
}

// IsEmpty reports whether the frame has no rows. A nil frame is empty.
func (f *Frame) IsEmpty() bool { return f.Len() == 0 }

func (f *Frame) Has(col string) bool { return f.index(col) >= 0 }

func (f *Frame) index(col string) int {
	if f == nil {
		return -1
	}
	if j, ok := f.idx[col]; ok {
		return j
	}
	return -1
}

func (f *Frame) Record(i int) Record { return Record{f: f, i: i} }

func (f *Frame) Each(fn func(Record)) {
	for i := 0; i < f.Len(); i++ {
		fn(Record{f: f, i: i})
	}
}

func (f *Frame) values(j int) []Value {
	out := make([]Value, f.Len())
	for i := range out {
		out[i] = cell(f.df.Elem(i, j))
	}
	return out
}

func seriesValues(s series.Series) []Value {
	out := make([]Value, s.Len())
	for i := range out {
		out[i] = cell(s.Elem(i))
	}
	return out
}

// Filter keeps the rows for which keep returns true.
func (f *Frame) Filter(keep func(Record) bool) *Frame {
	if f.bare() {
		return f.orEmpty()
	}
	mask := make([]bool, f.Len())
	for i := range mask {
		mask[i] = keep(Record{f: f, i: i})
	}
	return wrap(f.df.Subset(mask))
}

// DropEqual removes the rows whose col holds exactly the string s. Null
// cells are kept. A frame without col is returned as is.
func (f *Frame) DropEqual(col, s string) *Frame {
	if f.bare() || !f.Has(col) {
		return f.orEmpty()
	}
	isNA := func(el series.Element) bool { return el.IsNA() }
	return wrap(f.df.Filter(
		dataframe.F{Colname: col, Comparator: series.Neq, Comparando: s},
		dataframe.F{Colname: col, Comparator: series.CompFunc, Comparando: isNA},
	))
}

// Select projects the frame onto cols, in that order.
func (f *Frame) Select(cols ...string) (*Frame, error) {
	for _, c := range cols {
		if !f.Has(c) {
			return nil, missing(c)
		}
	}
	if len(cols) == 0 {
		return Empty(), nil
	}
	return wrap(f.df.Select(cols)), nil
}

// WithColumn sets col to fn(row) for every row. An existing column keeps its
// position; a new one is appended.
func (f *Frame) WithColumn(col string, fn func(Record) Value) *Frame {
	if f.bare() {
		return f.orEmpty()
	}
	vals := make([]Value, f.Len())
	for i := range vals {
		vals[i] = fn(Record{f: f, i: i})
	}
	return wrap(f.df.Mutate(column(col, vals, kindOf(vals))))
}

// MapColumn rewrites every cell of col. A frame without col is returned as is.
func (f *Frame) MapColumn(col string, fn func(Value) Value) *Frame {
	if !f.Has(col) {
		return f
	}
	return f.WithColumn(col, func(r Record) Value { return fn(r.Get(col)) })
}

// FillNull replaces nulls in cols (all columns when none are given) with v.
func (f *Frame) FillNull(v Value, cols ...string) *Frame {
	if f.bare() {
		return f.orEmpty()
	}
	targets := make(map[string]bool, len(cols))
	for _, c := range cols {
		targets[c] = true
	}
	return wrap(f.df.Capply(func(s series.Series) series.Series {
		if (len(cols) > 0 && !targets[s.Name]) || !s.HasNaN() {
			return s
		}
		vals := seriesValues(s)
		for i, c := range vals {
			if c.IsNull() {
				vals[i] = v
			}
		}
		return column(s.Name, vals, kindOf(vals))
	}))
}

// TopN returns the n rows with the largest numeric value in col, descending.
// Ties keep their input order; nulls sort last.
func (f *Frame) TopN(n int, col string) (*Frame, error) {
	if !f.Has(col) {
		return nil, missing(col)
	}
	sorted := f.df.Arrange(dataframe.RevSort(col))
	if err := sorted.Error(); err != nil {
		return nil, err
	}
	if n >= sorted.Nrow() {
		return wrap(sorted), nil
	}
	keep := make([]int, max(n, 0))
	for i := range keep {
		keep[i] = i
	}
	return wrap(sorted.Subset(keep)), nil
}

// Concat stacks frames under cols. Cells for columns a frame lacks are null.
// A column that holds text in any frame is text in the result.
func Concat(cols []string, frames ...*Frame) *Frame {
	if len(cols) == 0 {
		return Empty()
	}
	kinds := make(map[string]Kind, len(cols))
	for _, c := range cols {
		kinds[c] = KindNumber
		for _, fr := range frames {
			if j := fr.index(c); j >= 0 && kindOf(fr.values(j)) == KindString {
				kinds[c] = KindString
			}
		}
	}

	var out dataframe.DataFrame
	stacked := false
	for _, fr := range frames {
		if fr.IsEmpty() {
			continue
		}
		part := fr.df
		for _, c := range cols {
			if !fr.Has(c) {
				part = part.Mutate(column(c, make([]Value, fr.Len()), kinds[c]))
			}
		}
		part = part.Select(cols).Capply(func(s series.Series) series.Series {
			if kinds[s.Name] == KindString && s.Type() != series.String {
				return column(s.Name, seriesValues(s), KindString)
			}
			return s
		})
		if !stacked {
			out, stacked = part, true
			continue
		}
		out = out.RBind(part)
	}
	if !stacked {
		ss := make([]series.Series, len(cols))
		for k, c := range cols {
			ss[k] = column(c, nil, kinds[c])
		}
		out = dataframe.New(ss...)
	}
	return wrap(out)
}

// WriteCSV writes a header row in column order and one line per record.
// Numbers use their shortest exact form and nulls are empty.
func (f *Frame) WriteCSV(w io.Writer) error {
	if f.bare() {
		return nil
	}
	text := f.df.Capply(func(s series.Series) series.Series {
		vals := seriesValues(s)
		out := make([]string, len(vals))
		for i, v := range vals {
			out[i] = v.String()
		}
		return series.New(out, series.String, s.Name)
	})
	return text.WriteCSV(w)
}

// ReadCSV loads a table written by WriteCSV. Columns whose cells all parse
// as numbers become numeric; empty cells are null. Input without data rows
// is an empty frame.
func ReadCSV(r io.Reader) (*Frame, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !bytes.Contains(bytes.TrimSpace(b), []byte("\n")) {
		return Empty(), nil
	}
	return fromDataFrame(dataframe.ReadCSV(bytes.NewReader(b), dataframe.NaNValues([]string{""})))
}

// bare reports a frame without columns, which gota cannot represent.
func (f *Frame) bare() bool { return f == nil || f.df.Ncol() == 0 }

func (f *Frame) orEmpty() *Frame {
	if f == nil {
		return Empty()
	}
	return f
}

func kindOf(vals []Value) Kind {
	for _, v := range vals {
		if v.Kind() == KindString {
			return KindString
		}
	}
	return KindNumber
}

// column builds a series of kind k. Numbers in a string column keep their
// shortest form.
func column(name string, vals []Value, k Kind) series.Series {
	if k == KindString {
		out := make([]interface{}, len(vals))
		for i, v := range vals {
			if !v.IsNull() {
				out[i] = v.String()
			}
		}
		return series.New(out, series.String, name)
	}
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		if x, ok := v.Float(); ok {
			out[i] = x
		}
	}
	return series.New(out, series.Float, name)
}

func cell(e series.Element) Value {
	if e.IsNA() {
		return Null()
	}
	if e.Type() == series.String {
		return Str(e.String())
	}
	return Num(e.Float())
}

// Record is a read-only view of one row.
type Record struct {
	f *Frame
	i int
}

func (r Record) Index() int { return r.i }

// Get returns the cell at col, or null when the column does not exist.
func (r Record) Get(col string) Value {
	j := r.f.index(col)
	if j < 0 {
		return Null()
	}
	return cell(r.f.df.Elem(r.i, j))
}

func (r Record) Num(col string) (float64, bool) { return r.Get(col).Float() }

func (r Record) Text(col string) string { return r.Get(col).Text() }
