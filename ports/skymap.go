package ports

import "nucoinc/domain/astro"

// SkyMapper is the external sky-map collaborator. The core calls it only to
// produce auxiliary visualizations; no probability is computed from its
// output.
type SkyMapper interface {
	// RenderPSF rasters the Gaussian point-spread function of a detection
	// onto a fixed-resolution RA/Dec grid.
	RenderPSF(raDeg, decDeg, sigmaDeg float64) (*astro.SkyGrid, error)
}
