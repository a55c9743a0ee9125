package led

import "github.com/signworks/dmsview/internal/raster"

// Driver mirrors displayed rasters onto an LED output.
type Driver interface {
	// Write shows r. Pixels outside the driver's grid are dropped.
	Write(r *raster.Raster) error
	// Close blanks the output and releases resources.
	Close() error
}
