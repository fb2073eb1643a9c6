// Package skymap implements the sky-map port: rendering a detection's
// Gaussian point-spread function onto a fixed-resolution RA/Dec grid.
// Auxiliary visualization only; nothing here feeds a probability.
package skymap

import (
	"gonum.org/v1/gonum/stat/distuv"

	"nucoinc/domain/astro"
	"nucoinc/internal/errors"
	"nucoinc/ports"
)

var _ ports.SkyMapper = (*Renderer)(nil)

// Renderer rasters PSFs at a fixed resolution.
type Renderer struct {
	nRA  int
	nDec int
}

// NewRenderer creates a renderer with nRA x nDec pixels over the full sky.
func NewRenderer(nRA, nDec int) *Renderer {
	return &Renderer{nRA: nRA, nDec: nDec}
}

// RenderPSF renders the Gaussian angular-uncertainty kernel of a detection
// centered at (raDeg, decDeg) with standard deviation sigmaDeg. The PSF is
// the product of per-axis normal densities, matching the small-angle
// Gaussian used by the spatial signal density, with the RA difference
// wrapped to the nearer side of the sphere.
func (r *Renderer) RenderPSF(raDeg, decDeg, sigmaDeg float64) (*astro.SkyGrid, error) {
	if sigmaDeg <= 0 {
		return nil, errors.New(errors.CodeBadTable, "psf render requires a positive angular uncertainty")
	}
	if astro.UniformSkyDensity(raDeg, decDeg) == 0 {
		return nil, errors.DomainMiss("psf center ra=%g dec=%g outside valid sky ranges", raDeg, decDeg)
	}

	raPDF := distuv.Normal{Mu: 0, Sigma: sigmaDeg}
	decPDF := distuv.Normal{Mu: decDeg, Sigma: sigmaDeg}

	grid := &astro.SkyGrid{
		RADeg:  make([]float64, r.nRA),
		DecDeg: make([]float64, r.nDec),
		Values: make([][]float64, r.nRA),
	}
	for i := range grid.RADeg {
		grid.RADeg[i] = (float64(i) + 0.5) * 360 / float64(r.nRA)
	}
	for j := range grid.DecDeg {
		grid.DecDeg[j] = -90 + (float64(j)+0.5)*180/float64(r.nDec)
	}
	for i, ra := range grid.RADeg {
		row := make([]float64, r.nDec)
		dRA := wrapDeg(ra - raDeg)
		for j, dec := range grid.DecDeg {
			row[j] = raPDF.Prob(dRA) * decPDF.Prob(dec)
		}
		grid.Values[i] = row
	}
	return grid, nil
}

// wrapDeg maps an RA difference into [-180, 180).
func wrapDeg(d float64) float64 {
	for d >= 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	return d
}
