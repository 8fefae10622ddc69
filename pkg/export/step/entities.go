// Package step writes a triangle mesh as a STEP AP214 file: one PLANE
// surface and one ADVANCED_FACE per non-degenerate triangle, wrapped in
// the usual product/context/shape-representation boilerplate. No
// dependency in the stack reads or writes STEP, so this implements the
// ISO-10303-21 text encoding directly against the entity grammar below.
package step

import (
	"fmt"
	"strings"
)

// entity is a STEP DATA-section record with an assigned id.
type entity interface {
	id() int
	setID(int)
	String() string
}

type baseEntity struct{ entID int }

func (e *baseEntity) id() int      { return e.entID }
func (e *baseEntity) setID(id int) { e.entID = id }

type applicationContext struct {
	baseEntity
	application string
}

func (e *applicationContext) String() string {
	return fmt.Sprintf("#%d=APPLICATION_CONTEXT('%s');", e.entID, e.application)
}

type product struct {
	baseEntity
	name             string
	description      string
	frameOfReference []int
}

func (e *product) String() string {
	return fmt.Sprintf("#%d=PRODUCT('','%s','%s',(%s));", e.entID, e.name, e.description, formatRefs(e.frameOfReference))
}

type productContext struct {
	baseEntity
	name             string
	frameOfReference int
	disciplineType   string
}

func (e *productContext) String() string {
	return fmt.Sprintf("#%d=PRODUCT_CONTEXT('%s',#%d,'%s');", e.entID, e.name, e.frameOfReference, e.disciplineType)
}

type productDefinitionFormation struct {
	baseEntity
	description string
	ofProduct   int
}

func (e *productDefinitionFormation) String() string {
	return fmt.Sprintf("#%d=PRODUCT_DEFINITION_FORMATION('','%s',#%d);", e.entID, e.description, e.ofProduct)
}

type productDefinitionContext struct {
	baseEntity
	name             string
	frameOfReference int
	lifeCycleStage   string
}

func (e *productDefinitionContext) String() string {
	return fmt.Sprintf("#%d=PRODUCT_DEFINITION_CONTEXT('%s',#%d,'%s');", e.entID, e.name, e.frameOfReference, e.lifeCycleStage)
}

type productDefinition struct {
	baseEntity
	description      string
	formation        int
	frameOfReference int
}

func (e *productDefinition) String() string {
	return fmt.Sprintf("#%d=PRODUCT_DEFINITION('','%s',#%d,#%d);", e.entID, e.description, e.formation, e.frameOfReference)
}

type productDefinitionShape struct {
	baseEntity
	name        string
	description string
	definition  int
}

func (e *productDefinitionShape) String() string {
	return fmt.Sprintf("#%d=PRODUCT_DEFINITION_SHAPE('%s','%s',#%d);", e.entID, e.name, e.description, e.definition)
}

type shapeDefinitionRepresentation struct {
	baseEntity
	definition         int
	usedRepresentation int
}

func (e *shapeDefinitionRepresentation) String() string {
	return fmt.Sprintf("#%d=SHAPE_DEFINITION_REPRESENTATION(#%d,#%d);", e.entID, e.definition, e.usedRepresentation)
}

type advancedBrepShapeRepresentation struct {
	baseEntity
	name           string
	items          []int
	contextOfItems int
}

func (e *advancedBrepShapeRepresentation) String() string {
	return fmt.Sprintf("#%d=ADVANCED_BREP_SHAPE_REPRESENTATION('%s',(%s),#%d);", e.entID, e.name, formatRefs(e.items), e.contextOfItems)
}

type manifoldSolidBrep struct {
	baseEntity
	name  string
	outer int
}

func (e *manifoldSolidBrep) String() string {
	return fmt.Sprintf("#%d=MANIFOLD_SOLID_BREP('%s',#%d);", e.entID, e.name, e.outer)
}

type closedShell struct {
	baseEntity
	name  string
	faces []int
}

func (e *closedShell) String() string {
	return fmt.Sprintf("#%d=CLOSED_SHELL('%s',(%s));", e.entID, e.name, formatRefs(e.faces))
}

type advancedFace struct {
	baseEntity
	name         string
	bounds       []int
	faceGeometry int
	sameSense    bool
}

func (e *advancedFace) String() string {
	return fmt.Sprintf("#%d=ADVANCED_FACE('%s',(%s),#%d,%s);", e.entID, e.name, formatRefs(e.bounds), e.faceGeometry, formatBool(e.sameSense))
}

type faceOuterBound struct {
	baseEntity
	name        string
	bound       int
	orientation bool
}

func (e *faceOuterBound) String() string {
	return fmt.Sprintf("#%d=FACE_OUTER_BOUND('%s',#%d,%s);", e.entID, e.name, e.bound, formatBool(e.orientation))
}

type edgeLoop struct {
	baseEntity
	name     string
	edgeList []int
}

func (e *edgeLoop) String() string {
	return fmt.Sprintf("#%d=EDGE_LOOP('%s',(%s));", e.entID, e.name, formatRefs(e.edgeList))
}

type orientedEdge struct {
	baseEntity
	name        string
	edgeElement int
	orientation bool
}

func (e *orientedEdge) String() string {
	return fmt.Sprintf("#%d=ORIENTED_EDGE('%s',*,*,#%d,%s);", e.entID, e.name, e.edgeElement, formatBool(e.orientation))
}

type edgeCurve struct {
	baseEntity
	name         string
	edgeStart    int
	edgeEnd      int
	edgeGeometry int
	sameSense    bool
}

func (e *edgeCurve) String() string {
	return fmt.Sprintf("#%d=EDGE_CURVE('%s',#%d,#%d,#%d,%s);", e.entID, e.name, e.edgeStart, e.edgeEnd, e.edgeGeometry, formatBool(e.sameSense))
}

type vertexPoint struct {
	baseEntity
	name           string
	vertexGeometry int
}

func (e *vertexPoint) String() string {
	return fmt.Sprintf("#%d=VERTEX_POINT('%s',#%d);", e.entID, e.name, e.vertexGeometry)
}

type cartesianPoint struct {
	baseEntity
	name        string
	coordinates [3]float64
}

func (e *cartesianPoint) String() string {
	return fmt.Sprintf("#%d=CARTESIAN_POINT('%s',(%s));", e.entID, e.name, formatFloats(e.coordinates[:]))
}

type direction struct {
	baseEntity
	name            string
	directionRatios [3]float64
}

func (e *direction) String() string {
	return fmt.Sprintf("#%d=DIRECTION('%s',(%s));", e.entID, e.name, formatFloats(e.directionRatios[:]))
}

type vector struct {
	baseEntity
	name        string
	orientation int
	magnitude   float64
}

func (e *vector) String() string {
	return fmt.Sprintf("#%d=VECTOR('%s',#%d,%.6f);", e.entID, e.name, e.orientation, e.magnitude)
}

type axis2Placement3D struct {
	baseEntity
	name         string
	location     int
	axis         int
	refDirection int
}

func (e *axis2Placement3D) String() string {
	return fmt.Sprintf("#%d=AXIS2_PLACEMENT_3D('%s',#%d,#%d,#%d);", e.entID, e.name, e.location, e.axis, e.refDirection)
}

type line struct {
	baseEntity
	name string
	pnt  int
	dir  int
}

func (e *line) String() string {
	return fmt.Sprintf("#%d=LINE('%s',#%d,#%d);", e.entID, e.name, e.pnt, e.dir)
}

type plane struct {
	baseEntity
	name     string
	position int
}

func (e *plane) String() string {
	return fmt.Sprintf("#%d=PLANE('%s',#%d);", e.entID, e.name, e.position)
}

// geometricRepresentationContext is a complex entity: one STEP record
// line combining four simple entity types, per the AP214 schema.
type geometricRepresentationContext struct {
	baseEntity
	contextIdentifier        string
	contextType              string
	coordinateSpaceDimension int
	uncertainty              []int
	units                    []int
}

func (e *geometricRepresentationContext) String() string {
	parts := []string{
		fmt.Sprintf("GEOMETRIC_REPRESENTATION_CONTEXT(%d)", e.coordinateSpaceDimension),
		fmt.Sprintf("GLOBAL_UNCERTAINTY_ASSIGNED_CONTEXT((%s))", formatRefs(e.uncertainty)),
		fmt.Sprintf("GLOBAL_UNIT_ASSIGNED_CONTEXT((%s))", formatRefs(e.units)),
		fmt.Sprintf("REPRESENTATION_CONTEXT('%s','%s')", e.contextIdentifier, e.contextType),
	}
	return fmt.Sprintf("#%d=(%s);", e.entID, strings.Join(parts, "\n"))
}

type uncertaintyMeasureWithUnit struct {
	baseEntity
	value       float64
	unit        int
	name        string
	description string
}

func (e *uncertaintyMeasureWithUnit) String() string {
	return fmt.Sprintf("#%d=UNCERTAINTY_MEASURE_WITH_UNIT(LENGTH_MEASURE(%.6E),#%d,'%s','%s');", e.entID, e.value, e.unit, e.name, e.description)
}

type lengthUnit struct{ baseEntity }

func (e *lengthUnit) String() string {
	return fmt.Sprintf("#%d=(LENGTH_UNIT()\nNAMED_UNIT(*)\nSI_UNIT(.MILLI.,.METRE.));", e.entID)
}

type planeAngleUnit struct{ baseEntity }

func (e *planeAngleUnit) String() string {
	return fmt.Sprintf("#%d=(NAMED_UNIT(*)\nPLANE_ANGLE_UNIT()\nSI_UNIT($,.RADIAN.));", e.entID)
}

type solidAngleUnit struct{ baseEntity }

func (e *solidAngleUnit) String() string {
	return fmt.Sprintf("#%d=(NAMED_UNIT(*)\nSI_UNIT($,.STERADIAN.)\nSOLID_ANGLE_UNIT());", e.entID)
}

func formatRefs(refs []int) string {
	strs := make([]string, len(refs))
	for i, ref := range refs {
		strs[i] = fmt.Sprintf("#%d", ref)
	}
	return strings.Join(strs, ",")
}

func formatFloats(vals []float64) string {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = fmt.Sprintf("%.6f", v)
	}
	return strings.Join(strs, ",")
}

func formatBool(b bool) string {
	if b {
		return ".T."
	}
	return ".F."
}
