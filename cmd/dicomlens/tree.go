package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mrsinham/dicomlens/internal/dicom/dicomdir"
)

func newTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <DICOMDIR>",
		Short: "Print the patient hierarchy of a DICOMDIR",
		Long: `The tree command reads a DICOMDIR and prints its patients, studies, series
and images with the file each image record references.

Example:
  dicomlens tree /media/cdrom/DICOMDIR
  dicomlens tree DICOMDIR --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTree(args[0])
		},
	}
}

func (a *app) loadDirectory(path string) (*dicomdir.Directory, error) {
	data, err := a.readInput(path)
	if err != nil {
		return nil, err
	}
	dir, err := dicomdir.Build(data, a.cfg.directoryOptions(a.logger)...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return dir, nil
}

// palette colors the levels of the tree.
type palette struct {
	patient, study, series, image, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		patient: color.New(color.FgCyan, color.Bold),
		study:   color.New(color.FgGreen),
		series:  color.New(color.FgYellow),
		image:   color.New(color.Reset),
		dim:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.patient, p.study, p.series, p.image, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (a *app) runTree(path string) error {
	dir, err := a.loadDirectory(path)
	if err != nil {
		return err
	}
	if a.jsonOut {
		return a.printJSON(dir.Tree)
	}

	p := newPalette(!a.noColor && isTerminal(a.stdout))
	w := a.stdout
	for _, pat := range dir.Tree.Patients {
		p.patient.Fprintf(w, "%s", pat.Name)
		p.dim.Fprintf(w, " [%s]\n", pat.ID)
		for _, st := range pat.Studies {
			p.study.Fprintf(w, "  %s %s", st.Date, st.Description)
			p.dim.Fprintf(w, " [%s]\n", st.InstanceUID)
			for _, se := range st.Series {
				p.series.Fprintf(w, "    #%s %s %s", se.Number, se.Modality, se.Description)
				p.dim.Fprintf(w, " (%d images)\n", len(se.Images))
				for _, im := range se.Images {
					p.image.Fprintf(w, "      %s", im.FilePath)
					p.dim.Fprintf(w, " %s\n", im.SOPInstanceUID)
				}
			}
		}
	}
	a.printInfo("\n%s: %d patients, %d images\n", displayFileSet(dir.FileSetID), len(dir.Tree.Patients), dir.Index.Len())
	return nil
}

func displayFileSet(id string) string {
	if id == "" {
		return "file set"
	}
	return id
}
