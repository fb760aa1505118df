package debug_utils

import (
	"bufio"
	"fmt"
	"io"
)

// DuDumpDisplayListToObj writes the recorded lines and triangles as a
// Wavefront OBJ file. Points and quads are skipped.
func DuDumpDisplayListToObj(d *DuDisplayList, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# polynavmesh debug dump\n")
	base := 1
	for _, b := range d.batches {
		var stride int
		var tag string
		switch b.prim {
		case DU_DRAW_LINES:
			stride, tag = 2, "l"
		case DU_DRAW_TRIS:
			stride, tag = 3, "f"
		default:
			continue
		}
		n := len(b.pos) / stride * stride
		for _, p := range b.pos[:n] {
			fmt.Fprintf(bw, "v %f %f %f\n", p.X(), p.Y(), p.Z())
		}
		for i := 0; i < n; i += stride {
			bw.WriteString(tag)
			for k := 0; k < stride; k++ {
				fmt.Fprintf(bw, " %d", base+i+k)
			}
			bw.WriteString("\n")
		}
		base += n
	}
	return bw.Flush()
}
