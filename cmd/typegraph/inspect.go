package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/typegraph-io/typegraph/scan"
)

var (
	inspectModule  string
	inspectPackage string
	inspectArrays  bool
	inspectJSON    bool
)

func init() {
	inspectCmd.Flags().StringVar(&inspectModule, "module", "", "Only show classes from this module")
	inspectCmd.Flags().StringVar(&inspectPackage, "package", "", "Only show classes from this package")
	inspectCmd.Flags().BoolVar(&inspectArrays, "arrays-only", false, "Only show array classes")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output the selected classes as JSON")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <result.json>",
	Short: "Inspect a scan result file",
	Long:  "Load a scan result from a JSON file and list its classes, with optional filters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		result, err := scan.LoadResultJSON(data, nil)
		if err != nil {
			return fmt.Errorf("failed to load scan result: %w", err)
		}

		list := result.AllClasses()
		if inspectArrays {
			list = result.ArrayClasses()
		}
		if inspectModule != "" {
			list = scan.FilterByModule(list, inspectModule)
		}
		if inspectPackage != "" {
			list = scan.FilterByPackage(list, inspectPackage)
		}

		if inspectJSON {
			return printClassesJSON(list)
		}
		printClassTable(result, list)
		return nil
	},
}

func printClassesJSON(list scan.ClassInfoList) error {
	type entry struct {
		Name   string `json:"name"`
		Kind   string `json:"kind"`
		Module string `json:"module,omitempty"`
		Dims   int    `json:"dims,omitempty"`
	}
	entries := make([]entry, 0, len(list))
	for _, ci := range list {
		e := entry{Name: ci.Name, Kind: ci.Kind.String()}
		if ci.Provenance.Module != nil {
			e.Module = ci.Provenance.Module.Name
		}
		if ci.IsArray() {
			e.Dims = ci.NumDimensions()
		}
		entries = append(entries, e)
	}

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printClassTable(result *scan.Result, list scan.ClassInfoList) {
	header := color.New(color.Bold)
	arrayKind := color.New(color.FgCyan)
	dim := color.New(color.Faint)

	header.Printf("%-45s %-10s %-15s %s\n", "NAME", "KIND", "MODULE", "ELEMENT")
	fmt.Println(strings.Repeat("-", 85))

	for _, ci := range list {
		module := "-"
		if ci.Provenance.Module != nil {
			module = ci.Provenance.Module.Name
		}

		element := ""
		if ci.IsArray() {
			if elem := ci.ElementClassInfo(); elem != nil {
				element = elem.Name
			} else if sig := ci.ElementTypeSignature(); sig != nil {
				element = sig.SignatureStr()
			}
		}

		kind := ci.Kind.String()
		if ci.IsArray() {
			kind = arrayKind.Sprint(kind)
		}

		fmt.Printf("%-45s %-10s %-15s %s\n", ci.Name, kind, module, element)
	}

	dim.Printf("\n%d classes (%d arrays), scan %s generated %s\n",
		result.Len(), len(result.ArrayClasses()),
		result.ID(), result.Generated().Format("2006-01-02 15:04:05"))
}
