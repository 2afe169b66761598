package video

import (
	"fmt"
	"strings"
)

// VolumePoint is an anchor of a volume curve, in seconds.
type VolumePoint struct {
	Time   float64
	Volume float64
}

// VolumeExpression builds a piecewise linear ffmpeg expression in t that
// holds the first and last values outside the anchors. offset is added to
// t, for streams that start part way into the curve.
func VolumeExpression(points []VolumePoint, offset float64) string {
	if len(points) == 0 {
		return ""
	}
	t := "t"
	if offset != 0 {
		t = fmt.Sprintf("(t+%.6f)", offset)
	}
	if len(points) == 1 {
		return fmt.Sprintf("%.6f", points[0].Volume)
	}

	var expr strings.Builder
	fmt.Fprintf(&expr, "if(lt(%s,%.6f),%.6f,", t, points[0].Time, points[0].Volume)
	open := 1
	for i := 0; i < len(points)-1; i++ {
		start, end := points[i], points[i+1]
		if end.Time <= start.Time {
			continue
		}
		// if(lt(t,end),startVol+(t-start)/(end-start)*(endVol-startVol),...)
		fmt.Fprintf(&expr, "if(lt(%s,%.6f),%.6f+(%s-%.6f)/%.6f*(%.6f),",
			t, end.Time, start.Volume, t, start.Time, end.Time-start.Time, end.Volume-start.Volume)
		open++
	}
	fmt.Fprintf(&expr, "%.6f", points[len(points)-1].Volume)
	expr.WriteString(strings.Repeat(")", open))
	return expr.String()
}
