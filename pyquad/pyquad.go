// Package pyquad registers the gpython module "_pyquad", which exposes coarse quad patterns to scripts.
package pyquad

import (
	"github.com/go-python/gpython/py"
	"github.com/golang/geo/r3"

	"github.com/2x3systems/quadpattern/goquad"
	"github.com/2x3systems/quadpattern/libquad/catalog"
	"github.com/2x3systems/quadpattern/libquad/coarse"
	"github.com/2x3systems/quadpattern/libquad/mesh"
	"github.com/2x3systems/quadpattern/libquad/meshio"
	"github.com/2x3systems/quadpattern/libquad/strip"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	pyCoarseType    = py.NewType("Coarse", "a coarse quad pattern with per-strip densities")
	pyDenseType     = py.NewType("Dense", "a dense quad mesh produced by Coarse.Densify()")
	pyWorkspaceType = py.NewType("Workspace", "collects active session resources")
)

const (
	kWorkspaceAttr = "_Workspace"
)

// Opts used for every mesh created from a script; the CLI may replace them before running a script.
var ScriptOpts = goquad.DefaultOpts

type pyCoarse struct {
	*coarse.CoarseQuadMesh
}

func (cm pyCoarse) Type() *py.Type {
	return pyCoarseType
}

type pyDense struct {
	*strip.QuadMesh
}

func (dm pyDense) Type() *py.Type {
	return pyDenseType
}

func wrapErr(err error) error {
	return py.ExceptionNewf(py.ValueError, "%v", err)
}

func checkArgs(name string, args py.Tuple, n int) error {
	if len(args) != n {
		return py.ExceptionNewf(py.TypeError, "%s() takes %d arguments (%d given)", name, n, len(args))
	}
	return nil
}

func intArg(obj py.Object) (int, error) {
	val, err := py.GetInt(obj)
	if err != nil {
		return 0, err
	}
	return int(val), nil
}

func floatArg(obj py.Object) (float64, error) {
	switch v := obj.(type) {
	case py.Float:
		return float64(v), nil
	case py.Int:
		return float64(v), nil
	}
	return 0, py.ExceptionNewf(py.TypeError, "expected a number (got %v)", obj.Type().Name)
}

func stringArg(obj py.Object) (string, error) {
	str, ok := obj.(py.String)
	if !ok {
		return "", py.ExceptionNewf(py.TypeError, "expected a str (got %v)", obj.Type().Name)
	}
	return string(str), nil
}

func intTuple[T ~int](ids []T) py.Tuple {
	tuple := make(py.Tuple, len(ids))
	for i, id := range ids {
		tuple[i] = py.Int(id)
	}
	return tuple
}

func seqItems(obj py.Object) py.Tuple {
	switch v := obj.(type) {
	case py.Tuple:
		return v
	case *py.List:
		return py.Tuple(v.Items)
	}
	return nil
}

func vectorArg(obj py.Object) (r3.Vector, error) {
	seq := seqItems(obj)
	if len(seq) != 3 {
		return r3.Vector{}, py.ExceptionNewf(py.TypeError, "expected an (x, y, z) sequence (got %v)", obj.Type().Name)
	}
	var xyz [3]float64
	for i := range xyz {
		val, err := floatArg(seq[i])
		if err != nil {
			return r3.Vector{}, err
		}
		xyz[i] = val
	}
	return r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// Arg 1 (str): pathname of an .obj or .qmsh file
// Arg 2 (optional sequence of (x, y, z)): pole locations; triangles touching a pole are read as pseudo-quads
func py_Load(module py.Object, args py.Tuple) (py.Object, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, py.ExceptionNewf(py.TypeError, "Load() takes 1 or 2 arguments (%d given)", len(args))
	}
	pathname, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}
	var poles []r3.Vector
	if len(args) == 2 {
		items := seqItems(args[1])
		if items == nil {
			return nil, py.ExceptionNewf(py.TypeError, "expected a sequence of poles (got %v)", args[1].Type().Name)
		}
		for _, item := range items {
			pos, err := vectorArg(item)
			if err != nil {
				return nil, err
			}
			poles = append(poles, pos)
		}
	}
	ifs, err := meshio.Load(pathname)
	if err != nil {
		return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
	}
	cm, err := coarse.FromIndexedFaceSetWithPoles(ifs, poles, ScriptOpts)
	if err != nil {
		return nil, wrapErr(err)
	}
	return py.Object(pyCoarse{cm}), nil
}

func py_Coarse_NumVerts(self py.Object, args py.Tuple) (py.Object, error) {
	cm := self.(pyCoarse)
	return py.Int(cm.NumVertices()), nil
}

func py_Coarse_NumFaces(self py.Object, args py.Tuple) (py.Object, error) {
	cm := self.(pyCoarse)
	return py.Int(cm.NumFaces()), nil
}

func py_Coarse_Strips(self py.Object, args py.Tuple) (py.Object, error) {
	cm := self.(pyCoarse)
	return intTuple(cm.Strips()), nil
}

func py_Coarse_Singularities(self py.Object, args py.Tuple) (py.Object, error) {
	cm := self.(pyCoarse)
	return intTuple(cm.Singularities()), nil
}

// Arg 1 (int): u
// Arg 2 (int): v
func py_Coarse_EdgeStrip(self py.Object, args py.Tuple) (py.Object, error) {
	cm := self.(pyCoarse)
	if err := checkArgs("EdgeStrip", args, 2); err != nil {
		return nil, err
	}
	u, err := intArg(args[0])
	if err != nil {
		return nil, err
	}
	v, err := intArg(args[1])
	if err != nil {
		return nil, err
	}
	sid, err := cm.EdgeStrip(goquad.VtxID(u), goquad.VtxID(v))
	if err != nil {
		return nil, wrapErr(err)
	}
	return py.Int(sid), nil
}

// Arg 1 (int): strip id
func py_Coarse_StripDensity(self py.Object, args py.Tuple) (py.Object, error) {
	cm := self.(pyCoarse)
	if err := checkArgs("StripDensity", args, 1); err != nil {
		return nil, err
	}
	sid, err := intArg(args[0])
	if err != nil {
		return nil, err
	}
	d, err := cm.StripDensity(goquad.StripID(sid))
	if err != nil {
		return nil, wrapErr(err)
	}
	return py.Int(d), nil
}

// Arg 1 (int): strip id
// Arg 2 (int): density
func py_Coarse_SetStripDensity(self py.Object, args py.Tuple) (py.Object, error) {
	cm := self.(pyCoarse)
	if err := checkArgs("SetStripDensity", args, 2); err != nil {
		return nil, err
	}
	sid, err := intArg(args[0])
	if err != nil {
		return nil, err
	}
	d, err := intArg(args[1])
	if err != nil {
		return nil, err
	}
	if err = cm.SetStripDensity(goquad.StripID(sid), d); err != nil {
		return nil, wrapErr(err)
	}
	return py.None, nil
}

// Arg 1 (int): density applied to every strip
func py_Coarse_SetStripsDensity(self py.Object, args py.Tuple) (py.Object, error) {
	cm := self.(pyCoarse)
	if err := checkArgs("SetStripsDensity", args, 1); err != nil {
		return nil, err
	}
	d, err := intArg(args[0])
	if err != nil {
		return nil, err
	}
	if err = cm.SetStripsDensity(d); err != nil {
		return nil, wrapErr(err)
	}
	return py.None, nil
}

// Arg 1 (float): target edge length applied to every strip
func py_Coarse_SetStripsDensityTarget(self py.Object, args py.Tuple) (py.Object, error) {
	cm := self.(pyCoarse)
	if err := checkArgs("SetStripsDensityTarget", args, 1); err != nil {
		return nil, err
	}
	t, err := floatArg(args[0])
	if err != nil {
		return nil, err
	}
	if err = cm.SetStripsDensityTarget(t); err != nil {
		return nil, wrapErr(err)
	}
	return py.None, nil
}

func py_Coarse_Densify(self py.Object, args py.Tuple) (py.Object, error) {
	cm := self.(pyCoarse)
	dense, err := cm.Densify()
	if err != nil {
		return nil, wrapErr(err)
	}
	return py.Object(pyDense{dense}), nil
}

// Arg 1 (str): output pathname
func py_Coarse_Save(self py.Object, args py.Tuple) (py.Object, error) {
	cm := self.(pyCoarse)
	return saveMesh(cm.ToIndexedFaceSet, args)
}

func py_Dense_NumVerts(self py.Object, args py.Tuple) (py.Object, error) {
	dm := self.(pyDense)
	return py.Int(dm.NumVertices()), nil
}

func py_Dense_NumFaces(self py.Object, args py.Tuple) (py.Object, error) {
	dm := self.(pyDense)
	return py.Int(dm.NumFaces()), nil
}

func py_Dense_IndexSum(self py.Object, args py.Tuple) (py.Object, error) {
	dm := self.(pyDense)
	sum, err := mesh.IndexSum(dm.Mesh)
	if err != nil {
		return nil, wrapErr(err)
	}
	return py.Float(sum), nil
}

func py_Dense_Coarsen(self py.Object, args py.Tuple) (py.Object, error) {
	dm := self.(pyDense)
	cm, err := coarse.FromQuadMesh(dm.QuadMesh, ScriptOpts)
	if err != nil {
		return nil, wrapErr(err)
	}
	return py.Object(pyCoarse{cm}), nil
}

// Arg 1 (str): output pathname
func py_Dense_Save(self py.Object, args py.Tuple) (py.Object, error) {
	dm := self.(pyDense)
	return saveMesh(dm.ToIndexedFaceSet, args)
}

// Arg 1 (str): output pathname
//
// Writes pseudo-quads as triangles and returns the ((dense_id, index), ...) pairs of the poles.
func py_Dense_SaveCollapsed(self py.Object, args py.Tuple) (py.Object, error) {
	dm := self.(pyDense)
	if err := checkArgs("SaveCollapsed", args, 1); err != nil {
		return nil, err
	}
	pathname, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}
	ifs, index, err := dm.ToCollapsedIndexedFaceSet()
	if err != nil {
		return nil, wrapErr(err)
	}
	if err = meshio.Save(pathname, ifs); err != nil {
		return nil, py.ExceptionNewf(py.OSError, "%v", err)
	}
	var poles py.Tuple
	for _, v := range dm.Vertices() {
		if dm.IsPole(v) {
			poles = append(poles, py.Tuple{py.Int(v), py.Int(index[v])})
		}
	}
	return poles, nil
}

func saveMesh(export func() (*goquad.IndexedFaceSet, map[goquad.VtxID]int), args py.Tuple) (py.Object, error) {
	if err := checkArgs("Save", args, 1); err != nil {
		return nil, err
	}
	pathname, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}
	ifs, _ := export()
	if err = meshio.Save(pathname, ifs); err != nil {
		return nil, py.ExceptionNewf(py.OSError, "%v", err)
	}
	return py.None, nil
}

// Workspace holds the resources of a script session, released when the script's context closes.
type Workspace struct {
	Patterns *catalog.PatternSet
}

func (ws *Workspace) Close() {
	ws.Patterns.Close()
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		ws := &Workspace{
			Patterns: catalog.NewPatternSet(),
		}
		wsObj = ws
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj, nil
}

// Arg 1 (Coarse): pattern to add
//
// Returns True if no equivalent pattern was added before.
func py_Workspace_TryAdd(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)
	if err := checkArgs("TryAdd", args, 1); err != nil {
		return nil, err
	}
	cm, ok := args[0].(pyCoarse)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Coarse object (got %v)", args[0].Type().Name)
	}
	added, err := ws.Patterns.TryAdd(cm.CoarseQuadMesh)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.NewBool(added), nil
}

// Arg 1 (Coarse): pattern to look up
func py_Workspace_Contains(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)
	if err := checkArgs("Contains", args, 1); err != nil {
		return nil, err
	}
	cm, ok := args[0].(pyCoarse)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Coarse object (got %v)", args[0].Type().Name)
	}
	found, err := ws.Patterns.Contains(cm.CoarseQuadMesh)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.NewBool(found), nil
}

func init() {

	/////////////////////////////////
	// Coarse
	{
		pyCoarseType.Dict["NumVerts"] = py.MustNewMethod("NumVerts", py_Coarse_NumVerts, 0, "")
		pyCoarseType.Dict["NumFaces"] = py.MustNewMethod("NumFaces", py_Coarse_NumFaces, 0, "")
		pyCoarseType.Dict["Strips"] = py.MustNewMethod("Strips", py_Coarse_Strips, 0, "returns the strip ids as a tuple")
		pyCoarseType.Dict["Singularities"] = py.MustNewMethod("Singularities", py_Coarse_Singularities, 0, "")
		pyCoarseType.Dict["EdgeStrip"] = py.MustNewMethod("EdgeStrip", py_Coarse_EdgeStrip, 0, "returns the strip id of edge (u, v)")
		pyCoarseType.Dict["StripDensity"] = py.MustNewMethod("StripDensity", py_Coarse_StripDensity, 0, "")
		pyCoarseType.Dict["SetStripDensity"] = py.MustNewMethod("SetStripDensity", py_Coarse_SetStripDensity, 0, "")
		pyCoarseType.Dict["SetStripsDensity"] = py.MustNewMethod("SetStripsDensity", py_Coarse_SetStripsDensity, 0, "")
		pyCoarseType.Dict["SetStripsDensityTarget"] = py.MustNewMethod("SetStripsDensityTarget", py_Coarse_SetStripsDensityTarget, 0, "")
		pyCoarseType.Dict["Densify"] = py.MustNewMethod("Densify", py_Coarse_Densify, 0, "generates the dense mesh for the current densities")
		pyCoarseType.Dict["Save"] = py.MustNewMethod("Save", py_Coarse_Save, 0, "")
	}

	/////////////////////////////////
	// Dense
	{
		pyDenseType.Dict["NumVerts"] = py.MustNewMethod("NumVerts", py_Dense_NumVerts, 0, "")
		pyDenseType.Dict["NumFaces"] = py.MustNewMethod("NumFaces", py_Dense_NumFaces, 0, "")
		pyDenseType.Dict["IndexSum"] = py.MustNewMethod("IndexSum", py_Dense_IndexSum, 0, "sum of the vertex indices")
		pyDenseType.Dict["Coarsen"] = py.MustNewMethod("Coarsen", py_Dense_Coarsen, 0, "extracts the coarse pattern of this mesh")
		pyDenseType.Dict["Save"] = py.MustNewMethod("Save", py_Dense_Save, 0, "")
		pyDenseType.Dict["SaveCollapsed"] = py.MustNewMethod("SaveCollapsed", py_Dense_SaveCollapsed, 0, "saves with pseudo-quads as triangles")
	}

	/////////////////////////////////
	// Workspace
	{
		pyWorkspaceType.Dict["TryAdd"] = py.MustNewMethod("TryAdd", py_Workspace_TryAdd, 0, "")
		pyWorkspaceType.Dict["Contains"] = py.MustNewMethod("Contains", py_Workspace_Contains, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("Load", py_Load, 0, "loads a coarse pattern from an .obj or .qmsh file"),
			py.MustNewMethod("GetWorkspace", py_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pyquad",
				Doc:  "coarse quad pattern gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})
	}
}
