package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

const MainPackagePath = "github.com/vegetable-and-chicken/Blackbone/cmd/bbthread"

var Verbose bool
var NOTimeout bool
var TestRegex, TestPackage, TestGOARCH string

func NewMakeCommands() *cobra.Command {
	RootCommand := &cobra.Command{
		Use:   "make.go",
		Short: "make script for bbthread.",
	}

	RootCommand.AddCommand(&cobra.Command{
		Use:   "build",
		Short: "Build bbthread",
		Run: func(cmd *cobra.Command, args []string) {
			execute("go", "build", buildFlags(), MainPackagePath)
		},
	})

	RootCommand.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Installs bbthread",
		Run: func(cmd *cobra.Command, args []string) {
			execute("go", "install", buildFlags(), MainPackagePath)
		},
	})

	RootCommand.AddCommand(&cobra.Command{
		Use:   "uninstall",
		Short: "Uninstalls bbthread",
		Run: func(cmd *cobra.Command, args []string) {
			execute("go", "clean", "-i", MainPackagePath)
		},
	})

	test := &cobra.Command{
		Use:   "test",
		Short: "Tests bbthread",
		Long: `Tests bbthread.

Without -s all packages are tested. Tests of pkg/proc/process open threads of
the test binary itself and only run on windows.
`,
		Run: testCmd,
	}
	test.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Verbose tests")
	test.PersistentFlags().BoolVarP(&NOTimeout, "timeout", "t", false, "Set infinite timeouts")
	test.PersistentFlags().StringVarP(&TestPackage, "test-set", "s", "", `Test the specified package only, for example pkg/proc/thread`)
	test.PersistentFlags().StringVarP(&TestRegex, "test-run", "r", "", `Only runs the tests matching the specified regex. This option can only be specified together with -s`)
	test.PersistentFlags().StringVarP(&TestGOARCH, "arch", "a", "", `Run the tests with GOARCH set`)
	RootCommand.AddCommand(test)

	RootCommand.AddCommand(&cobra.Command{
		Use:   "vendor",
		Short: "vendors dependencies",
		Run: func(cmd *cobra.Command, args []string) {
			execute("go", "mod", "vendor")
		},
	})

	return RootCommand
}

func strflatten(v []interface{}) []string {
	r := []string{}
	for _, s := range v {
		switch s := s.(type) {
		case []string:
			r = append(r, s...)
		case string:
			if s != "" {
				r = append(r, s)
			}
		}
	}
	return r
}

func executeq(env []string, cmd string, args ...interface{}) {
	x := exec.Command(cmd, strflatten(args)...)
	x.Stdout = os.Stdout
	x.Stderr = os.Stderr
	x.Env = append(os.Environ(), env...)
	err := x.Run()
	if x.ProcessState != nil && !x.ProcessState.Success() {
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func execute(cmd string, args ...interface{}) {
	fmt.Printf("%s %s\n", cmd, strings.Join(quotemaybe(strflatten(args)), " "))
	executeq(nil, cmd, args...)
}

func quotemaybe(args []string) []string {
	for i := range args {
		if strings.Contains(args[i], " ") {
			args[i] = fmt.Sprintf("%q", args[i])
		}
	}
	return args
}

func buildFlags() []string {
	buildSHA, err := exec.Command("git", "rev-parse", "HEAD").CombinedOutput()
	if err != nil {
		return nil
	}
	ldFlags := "-X main.Build=" + strings.TrimSpace(string(buildSHA))
	return []string{fmt.Sprintf("-ldflags=%s", ldFlags)}
}

func testFlags() []string {
	testFlags := []string{"-count", "1"}
	if Verbose {
		testFlags = append(testFlags, "-v")
	}
	if NOTimeout {
		testFlags = append(testFlags, "-timeout", "0")
	}
	return testFlags
}

func testCmd(cmd *cobra.Command, args []string) {
	if TestRegex != "" && TestPackage == "" {
		fmt.Fprintf(os.Stderr, "Can not use -r without -s\n")
		os.Exit(1)
	}

	pkgs := []string{"./..."}
	if TestPackage != "" {
		pkgs = []string{"./" + strings.TrimPrefix(TestPackage, "./")}
	}
	var env []string
	if TestGOARCH != "" {
		env = append(env, "GOARCH="+TestGOARCH)
	}
	runArgs := []string{}
	if TestRegex != "" {
		runArgs = []string{"-run=" + TestRegex}
	}
	fmt.Printf("go test %s %s %s\n", strings.Join(testFlags(), " "), strings.Join(pkgs, " "), strings.Join(runArgs, " "))
	executeq(env, "go", "test", testFlags(), pkgs, runArgs)
}

func main() {
	NewMakeCommands().Execute()
}
