// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loader

import (
	"bufio"
	"context"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"cogentcore.org/glam/engine"
	"github.com/go-gl/mathgl/mgl32"
)

// ObjDecoder decodes the Wavefront OBJ format, including materials
// from an associated .mtl library when one is named and can be
// opened. Only mesh data is supported: positions, normals, texture
// coordinates, polygon faces (triangulated as fans) and basic
// material colors.
type ObjDecoder struct{}

func (ObjDecoder) Desc() string {
	return ".obj = Wavefront OBJ format, with materials from an optional .mtl library"
}

func (ObjDecoder) Decode(ctx context.Context, name string, open Opener) (*engine.Model, error) {
	rc, err := open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	dec := newObjReader()
	if err := dec.parse(rc, dec.parseObjLine); err != nil {
		return nil, fmt.Errorf("obj: %w", err)
	}
	if dec.matlib != "" {
		dec.readMatlib(ctx, dec.matlib, open)
	}
	base := strings.TrimSuffix(path.Base(name), ".gz")
	m := dec.model(strings.TrimSuffix(base, path.Ext(base)))
	for _, w := range dec.warnings {
		slog.Debug("obj: "+w, "file", name)
	}
	return m, nil
}

// objReader holds the state of one decoding.
type objReader struct {
	objects   []*objObject
	materials map[string]*objMaterial
	matlib    string
	vertices  []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2
	warnings  []string
	line      int
	objCur    *objObject
	matCur    *objMaterial
}

type objObject struct {
	name  string
	faces []objFace
}

// objFace holds zero-based indexes; -1 for a missing uv or normal.
type objFace struct {
	vertices []int
	uvs      []int
	normals  []int
	material string
}

type objMaterial struct {
	name      string
	defined   bool
	opacity   float32
	shininess float32
	diffuse   color.RGBA
	emissive  color.RGBA
}

// defaultObjMaterial is the light gray used when a material is not found.
var defaultObjMaterial = &objMaterial{
	diffuse:   color.RGBA{0xA0, 0xA0, 0xA0, 0xFF},
	opacity:   1,
	shininess: 30,
}

func newObjReader() *objReader {
	return &objReader{materials: map[string]*objMaterial{}}
}

// parse reads the lines from r and dispatches them to parseLine.
func (dec *objReader) parse(r io.Reader, parseLine func(fields []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	dec.line = 0
	for sc.Scan() {
		dec.line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := parseLine(fields); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (dec *objReader) formatError(msg string) error {
	return fmt.Errorf("%s in line %d", msg, dec.line)
}

func (dec *objReader) warn(msg string) {
	dec.warnings = append(dec.warnings, fmt.Sprintf("line %d: %s", dec.line, msg))
}

func (dec *objReader) parseObjLine(fields []string) error {
	args := fields[1:]
	switch fields[0] {
	case "mtllib":
		if len(args) < 1 {
			return dec.formatError("mtllib with no fields")
		}
		dec.matlib = args[0]
	case "o", "g":
		name := fmt.Sprintf("object%d", len(dec.objects))
		if len(args) > 0 {
			name = args[0]
		}
		dec.newObject(name)
	case "v":
		v, err := dec.parseFloats(args, 3)
		if err != nil {
			return err
		}
		dec.vertices = append(dec.vertices, mgl32.Vec3{v[0], v[1], v[2]})
	case "vn":
		v, err := dec.parseFloats(args, 3)
		if err != nil {
			return err
		}
		dec.normals = append(dec.normals, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := dec.parseFloats(args, 2)
		if err != nil {
			return err
		}
		dec.uvs = append(dec.uvs, mgl32.Vec2{v[0], v[1]})
	case "f":
		return dec.parseFace(args)
	case "usemtl":
		if len(args) < 1 {
			return dec.formatError("usemtl with no fields")
		}
		dec.matCur = dec.material(args[0])
	case "s":
	default:
		dec.warn("field not supported: " + fields[0])
	}
	return nil
}

func (dec *objReader) newObject(name string) {
	dec.objCur = &objObject{name: name}
	dec.objects = append(dec.objects, dec.objCur)
}

func (dec *objReader) material(name string) *objMaterial {
	mat := dec.materials[name]
	if mat == nil {
		mat = &objMaterial{name: name, opacity: 1}
		dec.materials[name] = mat
	}
	return mat
}

func (dec *objReader) parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, dec.formatError(fmt.Sprintf("expected %d values", n))
	}
	res := make([]float32, n)
	for i, f := range fields[:n] {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, dec.formatError(err.Error())
		}
		res[i] = float32(v)
	}
	return res, nil
}

// parseIndex parses a one-based index, where negative values are
// relative to the end, into a zero-based index.
func (dec *objReader) parseIndex(s string, n int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, dec.formatError(err.Error())
	}
	switch {
	case v > 0:
		v--
	case v < 0:
		v = n + v
	default:
		return 0, dec.formatError("face index of 0")
	}
	if v < 0 || v >= n {
		return 0, dec.formatError(fmt.Sprintf("face index %s out of range", s))
	}
	return v, nil
}

// parseFace parses a face line: f v1[/vt1][/vn1] v2[/vt2][/vn2] ...
func (dec *objReader) parseFace(fields []string) error {
	if dec.objCur == nil {
		dec.newObject(fmt.Sprintf("unnamed%d", dec.line))
	}
	if len(fields) < 3 {
		return dec.formatError("face with less than 3 vertices")
	}
	face := objFace{
		vertices: make([]int, len(fields)),
		uvs:      make([]int, len(fields)),
		normals:  make([]int, len(fields)),
	}
	if dec.matCur != nil {
		face.material = dec.matCur.name
	}
	for i, f := range fields {
		parts := strings.Split(f, "/")
		var err error
		if face.vertices[i], err = dec.parseIndex(parts[0], len(dec.vertices)); err != nil {
			return err
		}
		face.uvs[i], face.normals[i] = -1, -1
		if len(parts) > 1 && parts[1] != "" {
			if face.uvs[i], err = dec.parseIndex(parts[1], len(dec.uvs)); err != nil {
				return err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if face.normals[i], err = dec.parseIndex(parts[2], len(dec.normals)); err != nil {
				return err
			}
		}
	}
	dec.objCur.faces = append(dec.objCur.faces, face)
	return nil
}

// readMatlib reads the material library, keeping the default
// material if it cannot be read.
func (dec *objReader) readMatlib(ctx context.Context, name string, open Opener) {
	rc, err := open(ctx, name)
	if err != nil {
		dec.warn(fmt.Sprintf("material library %s: %v", name, err))
		return
	}
	defer rc.Close()
	dec.matCur = nil
	if err := dec.parse(rc, dec.parseMtlLine); err != nil {
		dec.warn(fmt.Sprintf("material library %s: %v", name, err))
	}
}

func (dec *objReader) parseMtlLine(fields []string) error {
	args := fields[1:]
	if fields[0] == "newmtl" {
		if len(args) < 1 {
			return dec.formatError("newmtl with no fields")
		}
		dec.matCur = dec.material(args[0])
		dec.matCur.defined = true
		return nil
	}
	if dec.matCur == nil {
		return dec.formatError(fields[0] + " before newmtl")
	}
	switch fields[0] {
	case "d":
		v, err := dec.parseFloats(args, 1)
		if err != nil {
			return err
		}
		dec.matCur.opacity = v[0]
	case "Tr":
		v, err := dec.parseFloats(args, 1)
		if err != nil {
			return err
		}
		dec.matCur.opacity = 1 - v[0]
	case "Ns":
		v, err := dec.parseFloats(args, 1)
		if err != nil {
			return err
		}
		dec.matCur.shininess = v[0]
	case "Kd", "Ke":
		v, err := dec.parseFloats(args, 3)
		if err != nil {
			return err
		}
		c := color.RGBA{floatByte(v[0]), floatByte(v[1]), floatByte(v[2]), 0xFF}
		if fields[0] == "Kd" {
			dec.matCur.diffuse = c
		} else {
			dec.matCur.emissive = c
		}
	default:
		dec.warn("field not supported: " + fields[0])
	}
	return nil
}

func floatByte(f float32) uint8 {
	return uint8(min(max(f, 0), 1)*255 + .5)
}

// model converts the decoded objects into a model with one mesh per
// run of faces sharing a material within each object.
func (dec *objReader) model(name string) *engine.Model {
	m := &engine.Model{Name: name}
	for _, ob := range dec.objects {
		var cur *engine.ModelMesh
		matName := ""
		for fi := range ob.faces {
			face := &ob.faces[fi]
			if cur == nil || face.material != matName {
				matName = face.material
				m.Meshes = append(m.Meshes, engine.ModelMesh{
					Name:     fmt.Sprintf("%s_%d", ob.name, len(m.Meshes)),
					Material: dec.materialParams(matName),
				})
				cur = &m.Meshes[len(m.Meshes)-1]
			}
			for i := 2; i < len(face.vertices); i++ {
				dec.copyVertex(&cur.Params, face, 0)
				dec.copyVertex(&cur.Params, face, i-1)
				dec.copyVertex(&cur.Params, face, i)
			}
		}
	}
	return m
}

func (dec *objReader) copyVertex(p *engine.Params, face *objFace, i int) {
	p.Indices = append(p.Indices, uint32(len(p.Points)))
	p.Points = append(p.Points, dec.vertices[face.vertices[i]])
	if ni := face.normals[i]; ni >= 0 {
		p.Normals = append(p.Normals, dec.normals[ni])
	}
	if ui := face.uvs[i]; ui >= 0 {
		p.UVs = append(p.UVs, dec.uvs[ui])
	}
}

func (dec *objReader) materialParams(name string) engine.MaterialParams {
	var mp engine.MaterialParams
	mp.Defaults()
	mat := dec.materials[name]
	if mat == nil || !mat.defined {
		if name != "" {
			dec.warn("material not found: " + name)
		}
		mat = defaultObjMaterial
	}
	mp.Color = mat.diffuse
	mp.Emissive = mat.emissive
	if mat.opacity > 0 {
		mp.Opacity = mat.opacity
	}
	if mat.shininess != 0 {
		mp.Shiny = mat.shininess
	}
	return mp
}
