// icsdes - ICS-DES codec CLI tool
//
// Usage:
//
//	icsdes encode [file]           Encode a JSON record as wire text
//	icsdes decode [file]           Decode wire text, print the payload as JSON
//	icsdes diff BASE TARGET        Encode the differential between two JSON records
//	icsdes merge BASE [file]       Merge a differential payload onto a JSON record
//	icsdes catalog [--form TYPE]   Print the registered forms, fields, and enums
//	icsdes version                 Print version info
//
// If no input file is given, reads from stdin.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/emcomm/icsdes/icsdes"
)

const version = "1.0.0"

var (
	maxPayload = pflag.Int("max-payload", 0, "override the decoder payload cap in bytes")
	formFilter = pflag.String("form", "", "restrict catalog output to one form type")
)

func main() {
	pflag.Usage = printUsage
	pflag.Parse()
	args := pflag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch cmd := args[0]; cmd {
	case "encode":
		err = cmdEncode(args[1:])
	case "decode":
		err = cmdDecode(args[1:])
	case "diff":
		err = cmdDiff(args[1:])
	case "merge":
		err = cmdMerge(args[1:])
	case "catalog":
		err = cmdCatalog()
	case "version":
		fmt.Printf("icsdes %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "icsdes: unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "icsdes: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  icsdes encode [file]           Encode a JSON record as wire text
  icsdes decode [file]           Decode wire text, print the payload as JSON
  icsdes diff BASE TARGET        Encode the differential between two JSON records
  icsdes merge BASE [file]       Merge a differential payload onto a JSON record
  icsdes catalog [--form TYPE]   Print the registered forms, fields, and enums
  icsdes version                 Print version info

Flags:`)
	pflag.PrintDefaults()
}

// readInput reads the named file, or stdin for "" or "-".
func readInput(name string) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

func readRecord(name string) (*icsdes.Record, error) {
	data, err := readInput(name)
	if err != nil {
		return nil, err
	}
	return icsdes.FromJSON(data)
}

func optionalFile(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func cmdEncode(args []string) error {
	r, err := readRecord(optionalFile(args))
	if err != nil {
		return err
	}
	wire, err := icsdes.Encode(r)
	if err != nil {
		return err
	}
	fmt.Println(wire)
	return nil
}

// decodedPayload is the JSON shape printed by the decode command.
type decodedPayload struct {
	Form         string          `json:"form"`
	Differential bool            `json:"differential"`
	Record       json.RawMessage `json:"record"`
	Removed      []int           `json:"removed,omitempty"`
}

func cmdDecode(args []string) error {
	data, err := readInput(optionalFile(args))
	if err != nil {
		return err
	}
	p, err := icsdes.DecodeWithOptions(strings.TrimSpace(string(data)), icsdes.DecodeOptions{
		MaxPayload: *maxPayload,
	})
	if err != nil {
		return err
	}
	recJSON, err := icsdes.ToJSON(p.Record)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(decodedPayload{
		Form:         p.FormType,
		Differential: p.Differential,
		Record:       recJSON,
		Removed:      p.Removed,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func cmdDiff(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("diff needs BASE and TARGET files")
	}
	base, err := readRecord(args[0])
	if err != nil {
		return err
	}
	target, err := readRecord(args[1])
	if err != nil {
		return err
	}
	wire, err := icsdes.DiffAndEncode(base, target)
	if err != nil {
		return err
	}
	fmt.Println(wire)
	return nil
}

func cmdMerge(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("merge needs a BASE file")
	}
	base, err := readRecord(args[0])
	if err != nil {
		return err
	}
	data, err := readInput(optionalFile(args[1:]))
	if err != nil {
		return err
	}
	merged, err := icsdes.DecodeAndMergeWithOptions(base, strings.TrimSpace(string(data)), icsdes.DecodeOptions{
		MaxPayload: *maxPayload,
	})
	if err != nil {
		return err
	}
	out, err := icsdes.ToJSON(merged)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func cmdCatalog() error {
	reg := icsdes.DefaultRegistry()
	for _, formType := range reg.FormTypes() {
		if *formFilter != "" && formType != *formFilter {
			continue
		}
		schema, _ := reg.Form(formType)
		fmt.Printf("form %s\n", formType)
		for _, code := range schema.Codes() {
			spec, _ := schema.Field(code)
			name, _ := reg.FieldForCode(code)
			switch spec.Kind {
			case icsdes.KindScalarEnum:
				fmt.Printf("  %3d  %-20s enum(%s)\n", code, name, spec.Enum)
			case icsdes.KindRepeatedGroup:
				fmt.Printf("  %3d  %-20s group%v\n", code, name, spec.Sub)
			default:
				fmt.Printf("  %3d  %-20s scalar\n", code, name)
			}
		}
	}
	if *formFilter != "" {
		return nil
	}
	for _, name := range reg.EnumNames() {
		table, _ := reg.Enum(name)
		fmt.Printf("enum %s\n", name)
		for _, tok := range table.Tokens() {
			val, _ := table.Value(tok)
			fmt.Printf("  %-5s %s\n", tok, val)
		}
	}
	return nil
}
