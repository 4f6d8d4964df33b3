package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/porelab/poreflow/batch"
	"github.com/porelab/poreflow/flow"
	"github.com/porelab/poreflow/io"
	"github.com/porelab/poreflow/mesh"
)

// FileGroup contains utility files for logging and writing profiles to.
type FileGroup struct {
	log, prof *os.File
}

// Close closes the files inside FileGroup.
func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

func main() {
	// The main function manages input sanitization and calls the
	// secondary main function for each mode. The code tries to fail
	// gracefully if the user provides incorrect input.

	var (
		simulateStr   string
		exampleConfig string
	)
	vars := map[string]*string{
		"Simulate":      &simulateStr,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&simulateStr, "Simulate", "",
		"Configuration file for [Simulate] mode: run the pipeline over "+
			"the configured sample range.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. The only accepted argument is 'Simulate'.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Simulate":
		wrap := io.DefaultSimulateWrapper()
		err := gcfg.ReadFileInto(wrap, simulateStr)
		if err != nil {
			log.Fatal(err.Error())
		}
		con := &wrap.Simulate

		if !con.ValidInput() {
			log.Fatal("Invalid/non-existent 'Input' value.")
		} else if !con.ValidOutput() {
			log.Fatal("Invalid/non-existent 'Output' value.")
		} else if !con.ValidRange() {
			log.Fatal("Invalid 'Start'/'End' range.")
		} else if !con.ValidFluid() {
			log.Fatal("Invalid 'Density'/'Viscosity' values.")
		} else if !con.ValidScales() {
			log.Fatal("Invalid 'TableScale'/'ScaleFactor' values.")
		} else if !con.ValidMeshCells() {
			log.Fatal("Invalid 'MeshCells' value.")
		} else if !con.ValidMaxSteps() {
			log.Fatal("Invalid 'MaxSteps' value.")
		}

		simulateMain(con)

	case "ExampleConfig":
		switch exampleConfig {
		case "Simulate":
			fmt.Println(io.ExampleSimulateFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. The only " +
					"recognized argument is 'Simulate'.",
			)
		}
	default:
		panic("Impossible")
	}
}

// getModeName returns the name of the mode and fails with a descriptive
// error if the user provided less or more than one mode flag.
func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but poreflow only "+
				"accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

// simulateMain runs one batch invocation with the reference engines.
func simulateMain(con *io.SimulateConfig) {
	fg := setupIO(con)
	defer fg.Close()

	runner := &batch.Runner{
		Config: con,
		Mesher: mesh.Uniform{Cells: con.MeshCells},
		Solver: flow.Segregated{
			MaxSteps: con.MaxSteps, Tolerance: con.Tolerance,
		},
	}
	results := runner.Run()

	exported, skipped, failed := 0, 0, 0
	for _, res := range results {
		switch res.State {
		case batch.Exported:
			exported++
		case batch.Skipped:
			skipped++
		case batch.Failed:
			failed++
		}
	}
	log.Printf(
		"Batch done: %d exported, %d skipped, %d failed.",
		exported, skipped, failed,
	)
}

// setupIO redirects logging and starts profiling when the config asks
// for it.
func setupIO(con *io.SimulateConfig) *FileGroup {
	var err error
	fg := new(FileGroup)

	if con.ValidLogFile() {
		fg.log, err = os.Create(con.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.SetOutput(fg.log)
	}

	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		err = pprof.StartCPUProfile(fg.prof)
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	return fg
}
