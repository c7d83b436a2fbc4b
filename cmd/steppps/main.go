// Command steppps boots the kernel on the modeled machine. Serial output
// goes to stdout, keystrokes read from the controlling terminal are fed to
// the keyboard controller and -gui opens a window mirroring the VGA text
// console.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"
	"github.com/mattn/go-tty"

	"github.com/sureSundar/STEPPPS-sub015/device/kbd"
	"github.com/sureSundar/STEPPPS-sub015/device/video/console"
	"github.com/sureSundar/STEPPPS-sub015/kernel/cpu"
	"github.com/sureSundar/STEPPPS-sub015/kernel/hal"
	"github.com/sureSundar/STEPPPS-sub015/kernel/kfmt"
	"github.com/sureSundar/STEPPPS-sub015/kernel/kmain"
	"github.com/sureSundar/STEPPPS-sub015/kernel/mem"
	"github.com/sureSundar/STEPPPS-sub015/kernel/rt0"
)

// Window dimensions for the GUI console mirror; sized for the debug font.
const (
	guiWidth  = console.DefaultWidth * 6
	guiHeight = console.DefaultHeight * 16
)

func main() {
	runtime.LockOSThread()

	memMB := flag.Int("mem", 16, "physical memory size in MiB")
	enableGUI := flag.Bool("gui", false, "mirror the VGA text console in a window")
	silent := flag.Bool("silent", false, "discard serial output")
	flag.Parse()

	var serialOut io.Writer = os.Stdout
	if *silent {
		serialOut = nil
	}

	m, err := hal.NewMachine(hal.Config{
		MemSize:   mem.Size(*memMB) * mem.Mb,
		SerialOut: serialOut,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", err.Module, err.Message)
		os.Exit(1)
	}

	keys := make(chan uint8, 64)
	go readKeys(keys)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		bootAndRun(m, keys)
	}()

	if *enableGUI {
		update := func(screen *ebiten.Image) error {
			ebitenutil.DebugPrint(screen, consoleText(m.Console))
			return nil
		}
		if err := ebiten.Run(update, guiWidth, guiHeight, 2, "steppps"); err != nil {
			log.Fatal(err)
		}
	}

	<-finished
}

// bootAndRun performs the handoff into the kernel and then pumps the
// machine until it halts, feeding queued keystrokes to the keyboard
// controller and echoing decoded input on the terminal.
func bootAndRun(m *hal.Machine, keys <-chan uint8) {
	rt0.Boot(m.CPU, kmain.BootLayout(), func(*cpu.CPU) {
		sys := kmain.Kmain(m)
		if sys == nil {
			return
		}

		for m.Step() {
			select {
			case code := <-keys:
				m.PressKey(code)
			default:
				time.Sleep(time.Millisecond)
			}

			for {
				ch, ok := sys.Keyboard.ReadKey()
				if !ok {
					break
				}
				kfmt.Printf("%c", ch)
			}
		}
	})

	fmt.Fprintln(os.Stderr, "machine halted")
}

// readKeys translates characters typed on the controlling terminal into
// scancodes. It exits quietly when no terminal is available.
func readKeys(keys chan<- uint8) {
	t, err := tty.Open()
	if err != nil {
		log.Printf("no controlling terminal; keyboard input disabled: %v", err)
		return
	}
	defer t.Close()

	for {
		r, err := t.ReadRune()
		if err != nil {
			return
		}
		if r == '\r' {
			r = '\n'
		}
		if r > 0x7F {
			continue
		}
		if code, ok := kbd.ScancodeFor(byte(r)); ok {
			keys <- code
		}
	}
}

// consoleText flattens the VGA text cells into the string the GUI mirror
// draws each frame.
func consoleText(cons *console.Vga) string {
	width, height := cons.Dimensions()
	out := make([]byte, 0, int(width+1)*int(height))

	for y := uint16(0); y < height; y++ {
		for x := uint16(0); x < width; x++ {
			ch, _ := cons.Cell(x, y)
			if ch < ' ' || ch > '~' {
				ch = ' '
			}
			out = append(out, ch)
		}
		out = append(out, '\n')
	}

	return string(out)
}
