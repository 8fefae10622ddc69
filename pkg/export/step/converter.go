package step

import (
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/geom"
	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/kernel"
)

// triangle is one facet pulled out of a kernel.Mesh's flat arrays.
type triangle struct {
	v0, v1, v2 geom.Vec3
}

func (t triangle) normal() geom.Vec3 {
	e1 := t.v1.Sub(t.v0)
	e2 := t.v2.Sub(t.v0)
	return e1.Cross(e2).Normalize()
}

// degenerate reports whether the triangle has (near) zero area.
func (t triangle) degenerate(eps float64) bool {
	e1 := t.v1.Sub(t.v0)
	e2 := t.v2.Sub(t.v0)
	return e1.Cross(e2).Length() < eps
}

func trianglesFromMesh(mesh *kernel.Mesh) []triangle {
	vertexAt := func(i uint32) geom.Vec3 {
		o := i * 3
		return geom.Vec3{X: float64(mesh.Vertices[o]), Y: float64(mesh.Vertices[o+1]), Z: float64(mesh.Vertices[o+2])}
	}
	tris := make([]triangle, 0, mesh.TriangleCount())
	for t := 0; t < mesh.TriangleCount(); t++ {
		tris = append(tris, triangle{
			v0: vertexAt(mesh.Indices[t*3]),
			v1: vertexAt(mesh.Indices[t*3+1]),
			v2: vertexAt(mesh.Indices[t*3+2]),
		})
	}
	return tris
}

// pointKey and edgeKey give vertex/edge caches exact-match lookup at the
// tolerance used across the build (see geom.Vec3.ApproxEqual elsewhere);
// here we key on a fixed-precision rounding of the coordinates, which is
// simpler than a tolerance scan and sufficient for tessellated geometry.
type pointKey [3]int64

func roundKey(v geom.Vec3) pointKey {
	const scale = 1e6
	return pointKey{
		int64(v.X * scale),
		int64(v.Y * scale),
		int64(v.Z * scale),
	}
}

type edgeKey struct{ a, b pointKey }

func newEdgeKey(v1, v2 geom.Vec3) edgeKey {
	a, b := roundKey(v1), roundKey(v2)
	if lessKey(a, b) {
		return edgeKey{a, b}
	}
	return edgeKey{b, a}
}

func lessKey(a, b pointKey) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}

// meshConverter turns a flat triangle list into the STEP entity chain: a
// CARTESIAN_POINT/DIRECTION cache feeding EDGE_CURVEs, an ADVANCED_FACE
// per triangle (via a fitted PLANE), and the product/context/shape
// boilerplate every AP214 reader expects.
type meshConverter struct {
	entities  []entity
	idCounter int

	pointCache     map[pointKey]int
	directionCache map[pointKey]int
	edgeCache      map[edgeKey]int
}

func newMeshConverter() *meshConverter {
	return &meshConverter{
		idCounter:      1,
		pointCache:     map[pointKey]int{},
		directionCache: map[pointKey]int{},
		edgeCache:      map[edgeKey]int{},
	}
}

func (c *meshConverter) add(e entity) int {
	e.setID(c.idCounter)
	c.entities = append(c.entities, e)
	c.idCounter++
	return e.id()
}

func (c *meshConverter) point(p geom.Vec3) int {
	k := roundKey(p)
	if id, ok := c.pointCache[k]; ok {
		return id
	}
	id := c.add(&cartesianPoint{coordinates: [3]float64{p.X, p.Y, p.Z}})
	c.pointCache[k] = id
	return id
}

func (c *meshConverter) direction(d geom.Vec3) int {
	d = d.Normalize()
	k := roundKey(d)
	if id, ok := c.directionCache[k]; ok {
		return id
	}
	id := c.add(&direction{directionRatios: [3]float64{d.X, d.Y, d.Z}})
	c.directionCache[k] = id
	return id
}

func (c *meshConverter) axisPlacement(origin, zAxis, xAxis geom.Vec3) int {
	return c.add(&axis2Placement3D{
		location:     c.point(origin),
		axis:         c.direction(zAxis),
		refDirection: c.direction(xAxis),
	})
}

func (c *meshConverter) vertex(p geom.Vec3) int {
	return c.add(&vertexPoint{vertexGeometry: c.point(p)})
}

func (c *meshConverter) edge(v1, v2 geom.Vec3) int {
	key := newEdgeKey(v1, v2)
	if id, ok := c.edgeCache[key]; ok {
		return id
	}
	v1ID := c.vertex(v1)
	v2ID := c.vertex(v2)
	dir := v2.Sub(v1).Normalize()
	vec := c.add(&vector{orientation: c.direction(dir), magnitude: v2.Sub(v1).Length()})
	geomLine := c.add(&line{pnt: c.point(v1), dir: vec})
	id := c.add(&edgeCurve{edgeStart: v1ID, edgeEnd: v2ID, edgeGeometry: geomLine, sameSense: true})
	c.edgeCache[key] = id
	return id
}

// triangleFace fits a PLANE through the triangle (origin at v0, normal as
// Z axis, first edge as the reference X axis) and wraps it in one
// ADVANCED_FACE bounded by the triangle's three oriented edges.
func (c *meshConverter) triangleFace(t triangle) int {
	e1ID := c.edge(t.v0, t.v1)
	e2ID := c.edge(t.v1, t.v2)
	e3ID := c.edge(t.v2, t.v0)

	loop := c.add(&edgeLoop{edgeList: []int{
		c.add(&orientedEdge{edgeElement: e1ID, orientation: true}),
		c.add(&orientedEdge{edgeElement: e2ID, orientation: true}),
		c.add(&orientedEdge{edgeElement: e3ID, orientation: true}),
	}})
	bound := c.add(&faceOuterBound{bound: loop, orientation: true})

	xAxis := t.v1.Sub(t.v0).Normalize()
	planeAxis := c.axisPlacement(t.v0, t.normal(), xAxis)
	planeID := c.add(&plane{position: planeAxis})

	return c.add(&advancedFace{bounds: []int{bound}, faceGeometry: planeID, sameSense: true})
}

// convert builds the full entity list for mesh under the given product
// name.
func (c *meshConverter) convert(tris []triangle, name string) []entity {
	appContextID := c.add(&applicationContext{application: "tiacad STEP writer"})

	lengthUnitID := c.add(&lengthUnit{})
	planeAngleUnitID := c.add(&planeAngleUnit{})
	solidAngleUnitID := c.add(&solidAngleUnit{})

	uncertaintyID := c.add(&uncertaintyMeasureWithUnit{
		value:       1e-6,
		unit:        lengthUnitID,
		name:        "DISTANCE_ACCURACY_VALUE",
		description: "Maximum model space distance between geometric entities",
	})

	geomContextID := c.add(&geometricRepresentationContext{
		contextType:              "3D",
		coordinateSpaceDimension: 3,
		uncertainty:              []int{uncertaintyID},
		units:                    []int{lengthUnitID, planeAngleUnitID, solidAngleUnitID},
	})

	productContextID := c.add(&productContext{frameOfReference: appContextID, disciplineType: "mechanical"})
	productID := c.add(&product{name: name, description: "tiacad export", frameOfReference: []int{productContextID}})
	pdfID := c.add(&productDefinitionFormation{ofProduct: productID})
	pdcID := c.add(&productDefinitionContext{frameOfReference: appContextID, lifeCycleStage: "design"})
	pdID := c.add(&productDefinition{formation: pdfID, frameOfReference: pdcID})
	pdsID := c.add(&productDefinitionShape{definition: pdID})

	faceIDs := make([]int, 0, len(tris))
	for _, t := range tris {
		if t.degenerate(1e-9) {
			continue
		}
		faceIDs = append(faceIDs, c.triangleFace(t))
	}

	shellID := c.add(&closedShell{faces: faceIDs})
	brepID := c.add(&manifoldSolidBrep{outer: shellID})

	placementID := c.axisPlacement(geom.Vec3{}, geom.WorldZ, geom.WorldX)

	advBrepID := c.add(&advancedBrepShapeRepresentation{
		items:          []int{brepID, placementID},
		contextOfItems: geomContextID,
	})
	c.add(&shapeDefinitionRepresentation{definition: pdsID, usedRepresentation: advBrepID})

	return c.entities
}
