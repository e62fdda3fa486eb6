package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"

	"github.com/spf13/pflag"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/pluginpb"

	"gopkg.microglot.org/gllgen/internal/compiler"
	"gopkg.microglot.org/gllgen/internal/exc"
	"gopkg.microglot.org/gllgen/internal/idl"
	"gopkg.microglot.org/gllgen/internal/target"
)

type opts struct {
	Roots            []string
	Output           string
	Package          string
	Simplify         bool
	DumpTokens       bool
	DumpTree         bool
	DescriptorSetOut string
	Plugin           string
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	op := &opts{}
	flags := pflag.NewFlagSet("gllgen", pflag.PanicOnError)
	flags.StringSliceVar(&op.Roots, "root", []string{"."}, "Root search paths for grammar files.")
	flags.StringVar(&op.Output, "output", "-", "Output path for the generated Go source, or - for STDOUT.")
	flags.StringVar(&op.Package, "package", "", "Package name for the generated Go source.")
	flags.BoolVar(&op.Simplify, "simplify", false, "Simplify the grammar before generating code.")
	flags.BoolVar(&op.DumpTokens, "dump-tokens", false, "Output the token stream as it is processed")
	flags.BoolVar(&op.DumpTree, "dump-tree", false, "Output the grammar after parsing")
	flags.StringVar(&op.DescriptorSetOut, "descriptor_set_out", "", "Writes a protobuf FileDescriptorSet describing the generated types to FILE")
	flags.StringVar(&op.Plugin, "plugin", "", "Specifies a plugin executable to run on the descriptor set.")
	_ = flags.Parse(os.Args[1:])
	targets := flags.Args()

	f, err := compiler.NewDefaultFS(op.Roots, os.LookupEnv)
	if err != nil {
		panic(err)
	}

	files := make([]idl.File, 0, len(targets))
	for _, t := range targets {
		in, err := f.Open(ctx, target.Normalize(t))
		if err != nil {
			fail(err)
		}
		files = append(files, in...)
	}

	rep := exc.NewReporter(nil)
	g, err := compiler.CompileFiles(ctx, rep, files, op.DumpTokens, op.DumpTree)
	if err != nil {
		fail(err)
	}

	if op.Simplify {
		g, err = compiler.SimplifyGrammar(g)
		if err != nil {
			fail(err)
		}
	}

	c, err := compiler.New(compiler.OptionWithExcReporter(rep))
	if err != nil {
		panic(err)
	}
	artifact, err := c.Compile(ctx, g)
	if err != nil {
		fail(err)
	}

	source, err := compiler.RenderGo(artifact, op.Package)
	if err != nil {
		fail(err)
	}
	if op.Output == "-" {
		fmt.Print(source)
	} else {
		output, absErr := filepath.Abs(op.Output)
		if absErr != nil {
			panic(absErr)
		}
		if err = os.WriteFile(output, []byte(source), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}

	// The descriptor file entry is named after the first grammar target so
	// that plugin FileToGenerate references line up with it.
	uri := "grammar.gll"
	if len(targets) > 0 {
		uri = targets[0]
	}

	if op.DescriptorSetOut != "" {
		fds, err := artifact.ToFileDescriptorSet(uri, op.Package)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		bytes, err := proto.Marshal(fds)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		if err = os.WriteFile(op.DescriptorSetOut, bytes, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}

	if op.Plugin != "" {
		outputDir := "."
		if op.Output != "-" {
			outputDir = filepath.Dir(op.Output)
		}
		fds, err := artifact.ToFileDescriptorSet(uri, op.Package)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		request := pluginpb.CodeGeneratorRequest{
			ProtoFile:       fds.File,
			FileToGenerate:  []string{uri},
			CompilerVersion: &pluginpb.Version{},
		}
		requestBytes, err := proto.Marshal(&request)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		var pluginOut bytes.Buffer
		var pluginErr bytes.Buffer

		cmd := exec.Command(op.Plugin)
		cmd.Stdin = bytes.NewReader(requestBytes)
		cmd.Stdout = &pluginOut
		cmd.Stderr = &pluginErr

		err = cmd.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s", pluginErr.String())
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		response := pluginpb.CodeGeneratorResponse{}
		err = proto.Unmarshal(pluginOut.Bytes(), &response)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		for _, responseFile := range response.File {
			filename := path.Join(outputDir, *responseFile.Name)
			if err = os.MkdirAll(filepath.Dir(filename), 0770); err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				os.Exit(1)
			}
			if err = os.WriteFile(filename, []byte(*responseFile.Content), 0o644); err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				os.Exit(1)
			}
		}
	}
}

// fail prints compiler diagnostics one per line and exits. Anything that is
// not a diagnostic is a bug and panics.
func fail(err error) {
	me := compiler.MultiException{}
	if errors.As(err, &me) {
		for _, e := range me {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		os.Exit(1)
	}
	var ex exc.Exception
	if errors.As(err, &ex) {
		fmt.Fprintln(os.Stderr, ex.Error())
		os.Exit(1)
	}
	panic(err)
}
