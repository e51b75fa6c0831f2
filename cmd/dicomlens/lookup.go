package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLookupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <DICOMDIR> <path>",
		Short: "Find the DICOMDIR record of a referenced file",
		Long: `The lookup command finds the image record referencing path and prints it
with its patient, study and series. Paths may use '/' or '\' and may be
absolute: a path matches when one ends with the other.

Example:
  dicomlens lookup DICOMDIR DICOM/PT000000/ST000000/SE000000/IM000000
  dicomlens lookup DICOMDIR /media/cdrom/DICOM/IMG001 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLookup(args[0], args[1])
		},
	}
}

func (a *app) runLookup(dirPath, path string) error {
	dir, err := a.loadDirectory(dirPath)
	if err != nil {
		return err
	}
	snap, ok := dir.Index.Lookup(path)
	if !ok {
		return fmt.Errorf("%s is not referenced by %s", path, dirPath)
	}
	if a.jsonOut {
		return a.printJSON(snap)
	}

	w := a.stdout
	fmt.Fprintf(w, "File:     %s\n", snap.Image.FilePath)
	fmt.Fprintf(w, "Patient:  %s (%s)\n", snap.Patient.Name, snap.Patient.ID)
	fmt.Fprintf(w, "Study:    %s %s [%s]\n", snap.Study.Date, snap.Study.Description, snap.Study.InstanceUID)
	fmt.Fprintf(w, "Series:   #%s %s %s [%s]\n", snap.Series.Number, snap.Series.Modality, snap.Series.Description, snap.Series.InstanceUID)
	fmt.Fprintf(w, "Instance: %s %s\n", snap.Image.InstanceNumber, snap.Image.SOPInstanceUID)
	fmt.Fprintf(w, "Syntax:   %s\n", snap.Image.TransferSyntaxUID)
	return nil
}
