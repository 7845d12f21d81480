/*
 * table.go, part of golattice.
 *
 * Copyright 2026 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package bravais

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	lattice "github.com/rmera/golattice"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

//IntegerTolerance is the largest deviation from an integer allowed for the elements
//of an operation in a table, and of its inverse.
const IntegerTolerance = 1e-12

//OpTable contains, for each Bravais lattice, the operations that take the Niggli-reduced
//cell of a lattice of that type to a cell that a Recognizer accepts.
//The order of the operations only affects how fast a lattice is found.
type OpTable map[Name][]lattice.Op

//go:embed niggli_ops.yaml
var niggliOpsYAML []byte

//defaultTable is built once and never modified.
var defaultTable = mustParseTable(niggliOpsYAML)

func mustParseTable(data []byte) OpTable {
	t, err := ParseTable(data)
	if err != nil {
		panic("goLattice/bravais: Embedded operation table is corrupt: " + err.Error())
	}
	return t
}

//DefaultTable returns a copy of the operation table embedded in the package.
func DefaultTable() OpTable {
	return defaultTable.Copy()
}

//Copy returns a deep copy of t.
func (t OpTable) Copy() OpTable {
	ret := make(OpTable, len(t))
	for k, v := range t {
		ret[k] = append([]lattice.Op(nil), v...)
	}
	return ret
}

//Len returns the total number of operations in t.
func (t OpTable) Len() int {
	n := 0
	for _, v := range t {
		n += len(v)
	}
	return n
}

//Validate checks that every operation in t is unimodular and that it and its inverse,
//obtained in floating point, are integer within IntegerTolerance. TRI can't have
//entries. It returns a critical error of kind ErrIntegrity on the first failure.
func (t OpTable) Validate() error {
	for name, ops := range t {
		if _, ok := parNames[name]; !ok {
			return lattice.NewError(lattice.ErrIntegrity, true, "OpTable.Validate", "unknown Bravais lattice %q", name)
		}
		if name == TRI && len(ops) > 0 {
			return lattice.NewError(lattice.ErrIntegrity, true, "OpTable.Validate", "TRI lattices can't be tabulated")
		}
		for i, op := range ops {
			if err := CheckOp(op); err != nil {
				return lattice.NewError(lattice.ErrIntegrity, true, "OpTable.Validate", "%s operation %d: %v", name, i, err)
			}
		}
	}
	return nil
}

//CheckOp returns a critical error of kind ErrIntegrity if op is not unimodular,
//or if its inverse, calculated in floating point, is not integer within IntegerTolerance.
func CheckOp(op lattice.Op) error {
	if !op.Unimodular() {
		return lattice.NewError(lattice.ErrIntegrity, true, "CheckOp", "operation %v is not unimodular", op)
	}
	var inv mat.Dense
	if err := inv.Inverse(op.Dense()); err != nil {
		return lattice.NewError(lattice.ErrIntegrity, true, "CheckOp", "can't invert %v: %v", op, err)
	}
	if _, maxerr := lattice.RoundOp(&inv); maxerr > IntegerTolerance {
		return lattice.NewError(lattice.ErrIntegrity, true, "CheckOp", "inverse of %v deviates from integer by %g", op, maxerr)
	}
	return nil
}

//ParseTable parses a table in YAML format: a mapping from lattice names to lists of
//operations, each a sequence of 9 integers in row-major order. The table is validated.
func ParseTable(data []byte) (OpTable, error) {
	var raw map[string][][]int
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, lattice.NewError(lattice.ErrInput, true, "ParseTable", "%v", err)
	}
	t := make(OpTable, len(raw))
	for k, v := range raw {
		name, err := ParseName(k)
		if err != nil {
			return nil, lattice.NewError(lattice.ErrInput, true, "ParseTable", "%v", err)
		}
		ops := make([]lattice.Op, 0, len(v))
		for _, o := range v {
			op, err := lattice.OpFromSlice(o)
			if err != nil {
				return nil, lattice.NewError(lattice.ErrInput, true, "ParseTable", "%s: %v", name, err)
			}
			ops = append(ops, op)
		}
		t[name] = ops
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

//ReadTable reads a YAML table from r. See ParseTable.
func ReadTable(r io.Reader) (OpTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, lattice.NewError(lattice.ErrInput, true, "ReadTable", "%v", err)
	}
	return ParseTable(data)
}

//LoadTable reads a table from the file path. Files with the
//.zst extension are decompressed with zstd.
func LoadTable(path string) (OpTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, lattice.NewError(lattice.ErrInput, true, "LoadTable", "%v", err)
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, lattice.NewError(lattice.ErrInput, true, "LoadTable", "%s: %v", path, err)
		}
		defer zr.Close()
		r = zr
	}
	t, err := ReadTable(r)
	var e *lattice.Error
	if errors.As(err, &e) {
		e.Decorate("LoadTable")
	}
	return t, err
}

//Marshal returns t in YAML format, with the lattices in the order of Names and
//each operation in one line.
func (t OpTable) Marshal() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range Names {
		ops, ok := t[name]
		if !ok {
			continue
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, op := range ops {
			o := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
			for _, v := range op.Flat() {
				o.Content = append(o.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)})
			}
			seq.Content = append(seq.Content, o)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(name)},
			seq)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, lattice.NewError(lattice.ErrInput, true, "OpTable.Marshal", "%v", err)
	}
	if err := enc.Close(); err != nil {
		return nil, lattice.NewError(lattice.ErrInput, true, "OpTable.Marshal", "%v", err)
	}
	return buf.Bytes(), nil
}

//WriteFile writes t in YAML format to the file path. If path
//has the .zst extension, the file is compressed with zstd.
func (t OpTable) WriteFile(path string) (err error) {
	data, err := t.Marshal()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return lattice.NewError(lattice.ErrInput, true, "OpTable.WriteFile", "%v", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = lattice.NewError(lattice.ErrInput, true, "OpTable.WriteFile", "%v", cerr)
		}
	}()
	var w io.WriteCloser = nopCloser{f}
	if strings.HasSuffix(path, ".zst") {
		w, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return lattice.NewError(lattice.ErrInput, true, "OpTable.WriteFile", "%v", err)
		}
	}
	if _, err = w.Write(data); err != nil {
		w.Close()
		return lattice.NewError(lattice.ErrInput, true, "OpTable.WriteFile", "%v", err)
	}
	if err = w.Close(); err != nil {
		return lattice.NewError(lattice.ErrInput, true, "OpTable.WriteFile", "%v", err)
	}
	return nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

//String returns a summary of the number of operations per lattice.
func (t OpTable) String() string {
	s := make([]string, 0, len(t))
	for _, name := range Names {
		if ops, ok := t[name]; ok {
			s = append(s, fmt.Sprintf("%s:%d", name, len(ops)))
		}
	}
	return "OpTable{" + strings.Join(s, " ") + "}"
}
