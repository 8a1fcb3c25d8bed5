// Package classify labels pixels with surface classes by testing spectral
// indices against the sensor's threshold catalog rows.
package classify

import (
	"github.com/glaciersat/snowline/internal/catalog"
	"github.com/glaciersat/snowline/internal/raster"
	"github.com/glaciersat/snowline/internal/spectral"
	"github.com/glaciersat/snowline/internal/types"
)

// Classify returns the membership mask of one surface class. The predicate is
// strict on both sides of every bound, so pixels exactly on a threshold are
// left unclassified and fall to the residual cloud/unknown class. Mutual
// exclusion between classes is a property of the catalog tables, not enforced
// here.
func Classify(idx *spectral.IndexSet, sensor types.SensorID, class types.SurfaceClass) *raster.Mask {
	row := catalog.Get(sensor, class)
	out := raster.NewMask(idx.NDSI.Width, idx.NDSI.Height)

	if row.Vacuous() {
		return out
	}

	for i := range idx.NDSI.Data {
		out.Bits[i] = row.Contains(idx.NDSI.Data[i], idx.Ratio1.Data[i], idx.Ratio2.Data[i])
	}
	return out
}

// ClassifyAll runs the classifier for snow, ice and debris and returns the
// masks keyed by class.
func ClassifyAll(idx *spectral.IndexSet, sensor types.SensorID) map[types.SurfaceClass]*raster.Mask {
	out := make(map[types.SurfaceClass]*raster.Mask, len(types.ClassifiableClasses))
	for _, class := range types.ClassifiableClasses {
		out[class] = Classify(idx, sensor, class)
	}
	return out
}
