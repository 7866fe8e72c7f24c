package coarse

import (
	"math"

	"github.com/pkg/errors"

	"github.com/2x3systems/quadpattern/goquad"
)

// InitStripDensity recomputes the strips and resets every strip density to 1.
func (cm *CoarseQuadMesh) InitStripDensity() error {
	if err := cm.CollectStrips(); err != nil {
		return err
	}
	cm.stripData = make(map[goquad.StripID]*StripData, cm.NumStrips())
	for _, sid := range cm.Strips() {
		cm.stripData[sid] = &StripData{
			Density: 1,
		}
	}
	return nil
}

// StripData returns the attributes of the given strip.
func (cm *CoarseQuadMesh) StripData(sid goquad.StripID) (*StripData, error) {
	data := cm.stripData[sid]
	if data == nil {
		return nil, errors.Wrapf(goquad.ErrStripNotFound, "strip %d", sid)
	}
	return data, nil
}

// StripDensity returns the density of the given strip.
func (cm *CoarseQuadMesh) StripDensity(sid goquad.StripID) (int, error) {
	data, err := cm.StripData(sid)
	if err != nil {
		return 0, err
	}
	return data.Density, nil
}

// StripDensities returns the density of every strip.
func (cm *CoarseQuadMesh) StripDensities() map[goquad.StripID]int {
	densities := make(map[goquad.StripID]int, len(cm.stripData))
	for sid, data := range cm.stripData {
		densities[sid] = data.Density
	}
	return densities
}

// SetStripDensity sets the density of one strip.
func (cm *CoarseQuadMesh) SetStripDensity(sid goquad.StripID, d int) error {
	data, err := cm.StripData(sid)
	if err != nil {
		return err
	}
	if d < 1 {
		return errors.Wrapf(goquad.ErrInvalidDensity, "strip %d: %d", sid, d)
	}
	data.Density = d
	return nil
}

// SetStripsDensity sets the same density on every strip.
func (cm *CoarseQuadMesh) SetStripsDensity(d int) error {
	if d < 1 {
		return errors.Wrapf(goquad.ErrInvalidDensity, "%d", d)
	}
	for _, data := range cm.stripData {
		data.Density = d
	}
	return nil
}

// SetStripDensityTarget sets the density of a strip so that its edges, once subdivided,
// are no longer than t on average: d = ceil(mean edge length / t).
func (cm *CoarseQuadMesh) SetStripDensityTarget(sid goquad.StripID, t float64) error {
	if !(t > 0) {
		return errors.Wrapf(goquad.ErrInvalidTargetLength, "%v", t)
	}
	edges, err := cm.StripEdges(sid)
	if err != nil {
		return err
	}

	sum := 0.0
	for _, e := range edges {
		sum += cm.EdgeLength(e.U, e.V)
	}
	d := int(math.Ceil(sum / float64(len(edges)) / t))
	if d < 1 {
		d = 1
	}
	return cm.SetStripDensity(sid, d)
}

// SetStripsDensityTarget applies SetStripDensityTarget to every strip.
func (cm *CoarseQuadMesh) SetStripsDensityTarget(t float64) error {
	if !(t > 0) {
		return errors.Wrapf(goquad.ErrInvalidTargetLength, "%v", t)
	}
	for _, sid := range cm.Strips() {
		if err := cm.SetStripDensityTarget(sid, t); err != nil {
			return err
		}
	}
	return nil
}
