package main

import (
	"fmt"
	"math"
	"os"

	"github.com/gorustyt/polynavmesh/navmesh"
	"github.com/spf13/cobra"
)

func InspectCmd() *cobra.Command {
	var (
		inFile string
		format string
	)
	c := &cobra.Command{
		Use:   "inspect",
		Short: "print a summary of a navmesh file",
		RunE: func(cmd *cobra.Command, args []string) error {
			decode, err := decoder(format)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(inFile)
			if err != nil {
				return err
			}
			mesh := new(navmesh.NavMesh)
			if err := decode(mesh, data); err != nil {
				return fmt.Errorf("%s: %w", inFile, err)
			}
			printSummary(cmd, mesh)
			return nil
		},
	}
	c.Flags().StringVar(&inFile, "in", "navmesh.bin", "navmesh file")
	c.Flags().StringVar(&format, "format", "bin", "input format: bin or proto")
	return c
}

func printSummary(cmd *cobra.Command, mesh *navmesh.NavMesh) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "generation: %d\n", mesh.Generation)
	fmt.Fprintf(out, "vertices:   %d\n", len(mesh.Vertices))
	fmt.Fprintf(out, "triangles:  %d\n", len(mesh.Triangles))
	if len(mesh.Vertices) == 0 {
		return
	}
	minx, minz := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxx, maxz := -minx, -minz
	for _, v := range mesh.Vertices {
		minx, maxx = min(minx, v.X()), max(maxx, v.X())
		minz, maxz = min(minz, v.Y()), max(maxz, v.Y())
	}
	fmt.Fprintf(out, "bounds:     (%g, %g) - (%g, %g)\n", minx, minz, maxx, maxz)
}

func encoder(format string) (func(m *navmesh.NavMesh) []byte, error) {
	switch format {
	case "bin":
		return (*navmesh.NavMesh).ToBin, nil
	case "proto":
		return (*navmesh.NavMesh).ToProto, nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func decoder(format string) (func(m *navmesh.NavMesh, data []byte) error, error) {
	switch format {
	case "bin":
		return (*navmesh.NavMesh).FromBin, nil
	case "proto":
		return (*navmesh.NavMesh).FromProto, nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
