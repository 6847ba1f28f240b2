// Stubdump synthesizes an interrupt dispatch stub from command line
// parameters and prints the machine code, its disassembly, and the
// descriptor table entry it was installed under. It is a debugging aid
// for inspecting what the stub synthesizer emits for a given
// board callout configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nanokern/intcore/intvec"
	"github.com/nanokern/intcore/log"
)

var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "stubdump",
		Short: "Interrupt stub synthesis inspector",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	var (
		irq      int
		priority int
		handler  uint32
		param    uint32

		boiRoutine   uint32
		boiParam     uint32
		boiNeedsParm bool
		eoiRoutine   uint32
		eoiParam     uint32
		eoiNeedsParm bool

		stubBase uint32
		idtBase  uint32
		enter    uint32
		exit     uint32

		verbosity string
		debugMods string
	)

	var connectCmd = &cobra.Command{
		Use:   "connect",
		Short: "Synthesize a stub for one IRQ connection and dump it",
		Run: func(cmd *cobra.Command, args []string) {
			log.InitLogger(verbosity)
			log.EnableModules(debugMods)

			core := intvec.NewCore(intvec.CoreConfig{
				Debug:        true,
				IDTBase:      idtBase,
				EnterRoutine: enter,
				ExitRoutine:  exit,
			})
			core.Board.ProgramIRQ(irq, intvec.CalloutConfig{
				BOIRoutine:           boiRoutine,
				BOIParameter:         boiParam,
				BOIParameterRequired: boiNeedsParm,
				EOIRoutine:           eoiRoutine,
				EOIParameter:         eoiParam,
				EOIParameterRequired: eoiNeedsParm,
			})

			stub := intvec.NewStub(stubBase)
			vector, err := core.ConnectInterrupt(irq, priority, handler, param, stub)
			if err != nil {
				fmt.Fprintf(os.Stderr, "connect failed: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("irq %d priority %d -> vector %d\n\n", irq, priority, vector)
			fmt.Printf("stub (%d bytes at 0x%08x):\n%s\n", stub.Len(), stub.Addr(), intvec.Disassemble(stub.Bytes(), stub.Addr()))
			fmt.Printf("idt[%d] at 0x%08x: % x\n", vector, core.Table.SlotAddress(vector), core.Table.Entry(vector))
		},
	}

	connectCmd.Flags().IntVar(&irq, "irq", 0, "virtualized IRQ to connect")
	connectCmd.Flags().IntVar(&priority, "priority", 2, "requested interrupt priority")
	connectCmd.Flags().Uint32Var(&handler, "handler", 0x00200000, "handler routine address")
	connectCmd.Flags().Uint32Var(&param, "param", 0, "handler parameter")
	connectCmd.Flags().Uint32Var(&boiRoutine, "boi", 0, "begin-of-interrupt routine address (0 = none)")
	connectCmd.Flags().Uint32Var(&boiParam, "boi-param", 0, "begin-of-interrupt parameter")
	connectCmd.Flags().BoolVar(&boiNeedsParm, "boi-needs-param", false, "push the begin-of-interrupt parameter")
	connectCmd.Flags().Uint32Var(&eoiRoutine, "eoi", 0, "end-of-interrupt routine address (0 = none)")
	connectCmd.Flags().Uint32Var(&eoiParam, "eoi-param", 0, "end-of-interrupt parameter")
	connectCmd.Flags().BoolVar(&eoiNeedsParm, "eoi-needs-param", false, "push the end-of-interrupt parameter")
	connectCmd.Flags().Uint32Var(&stubBase, "stub-base", 0x00300000, "address the stub executes at")
	connectCmd.Flags().Uint32Var(&idtBase, "idt-base", 0x00103000, "descriptor table base address")
	connectCmd.Flags().Uint32Var(&enter, "enter", 0x00100000, "interrupt-enter trampoline address")
	connectCmd.Flags().Uint32Var(&exit, "exit", 0x00100400, "interrupt-exit trampoline address")
	connectCmd.Flags().StringVar(&verbosity, "verbosity", "info", "log level (trace|debug|info|warn|error|crit)")
	connectCmd.Flags().StringVar(&debugMods, "debug", "", "comma separated log modules to enable")

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stubdump %s (%s)\n", Version, Commit)
		},
	}

	rootCmd.AddCommand(connectCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
