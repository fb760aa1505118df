package main

import (
	"fmt"
	"os"

	"github.com/gorustyt/polynavmesh/cdt"
	"github.com/gorustyt/polynavmesh/common/logger"
	"github.com/gorustyt/polynavmesh/config"
	"github.com/gorustyt/polynavmesh/debug_utils"
	"github.com/gorustyt/polynavmesh/navmesh"
	"github.com/spf13/cobra"
)

func BuildCmd() *cobra.Command {
	var (
		configFile string
		outFile    string
		format     string
	)
	c := &cobra.Command{
		Use:   "build",
		Short: "build a navmesh from a scene file",
		RunE: func(cmd *cobra.Command, args []string) error {
			encode, err := encoder(format)
			if err != nil {
				return err
			}
			scene, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if scene.Logger.AppName == "" {
				scene.Logger.AppName = "polynavmesh"
			}
			if err := logger.InitLogger(scene.Logger); err != nil {
				return err
			}
			defer logger.CloseLogger()

			mesh, err := runScene(scene)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outFile, encode(mesh), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d vertices, %d triangles, generation %d\n",
				outFile, len(mesh.Vertices), len(mesh.Triangles), mesh.Generation)
			return nil
		},
	}
	c.Flags().StringVar(&configFile, "config", "scene.hjson", "scene file")
	c.Flags().StringVar(&outFile, "out", "navmesh.bin", "output file")
	c.Flags().StringVar(&format, "format", "bin", "output format: bin or proto")
	return c
}

// runScene builds the initial obstacles, then applies every update batch.
func runScene(scene *config.Scene) (*navmesh.NavMesh, error) {
	initial, err := scene.InitialObstacles()
	if err != nil {
		return nil, err
	}
	batches, err := scene.UpdateBatches()
	if err != nil {
		return nil, err
	}

	store := navmesh.NewStore(scene.HeightfieldValue(),
		navmesh.WithLogger(logger.L()),
		navmesh.WithWorkers(scene.Workers),
		navmesh.WithRetireHook(func(old *navmesh.NavMesh) {
			logger.Debug("retired navmesh generation %v", old.Generation)
		}),
	)
	report, err := store.Build(initial)
	if err != nil {
		return nil, err
	}
	logReport("build", report)
	for i, batch := range batches {
		report, err = store.Update(batch)
		if err != nil {
			return nil, err
		}
		logReport(fmt.Sprintf("update %d", i), report)
	}

	if scene.Debug.DrawCdt && scene.Debug.Out != "" {
		if err := dumpDebug(store, scene.Debug.Out); err != nil {
			return nil, err
		}
	}
	return store.Handle().Load(), nil
}

func logReport(pass string, r *navmesh.PassReport) {
	logger.Info("%v: inserted %v, skipped %v, published %v, generation %v, navigable faces %v",
		pass, len(r.Inserted), len(r.Skipped), r.Published, r.Generation, r.NavigableFaces)
	if err := r.Err(); err != nil {
		logger.Warn("%v: %v", pass, err)
	}
}

func dumpDebug(store *navmesh.Store, path string) error {
	dl := debug_utils.NewDuDisplayList()
	cfg := debug_utils.DefaultDrawConfig()
	store.View(func(tri *cdt.Triangulation, navigable navmesh.NavigableFaceSet) {
		debug_utils.DuDebugDrawTriangulation(dl, tri, navigable, cfg)
	})
	debug_utils.DuDebugDrawNavMesh(dl, store.Handle().Load(), debug_utils.DuRGBA(0, 192, 255, 255), 0)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := debug_utils.DuDumpDisplayListToObj(dl, f); err != nil {
		return err
	}
	logger.Info("debug lines written to %v", path)
	return nil
}
