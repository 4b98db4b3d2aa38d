package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"exprvm/pkg/asm"
	"exprvm/pkg/compiler"
	"exprvm/pkg/grid"
	"exprvm/pkg/utils"
	"exprvm/pkg/vm"
)

const (
	screenW = 640
	screenH = 480

	// registers shown in the register panel
	shownRegisters = 32
	listingLines   = 20
	stepsPerFrame  = 1
)

var (
	face       = text.NewGoXFace(basicfont.Face7x13)
	colorIdle  = color.RGBA{0x90, 0x90, 0x90, 0xff}
	colorLive  = color.RGBA{0x60, 0xe0, 0x60, 0xff}
	colorTitle = color.RGBA{0xff, 0xd0, 0x40, 0xff}

	regLayout = grid.Layout{Cols: 4, CellW: 96, CellH: 16, OriginX: 8, OriginY: 24}
)

// Game steps a compiled program on the machine and shows its registers,
// variables and instruction listing.
type Game struct {
	vm      *vm.Machine
	program []asm.Instruction
	running bool
	err     error
}

func newGame(prog []asm.Instruction) *Game {
	g := &Game{vm: vm.New(vm.DefaultConfig()), program: prog}
	g.vm.Load(prog)
	return g
}

func (g *Game) reset() {
	g.vm.Reset()
	g.running = false
	g.err = nil
}

func (g *Game) step() {
	if g.err != nil || g.vm.Halted {
		g.running = false
		return
	}
	if err := g.vm.Step(); err != nil {
		g.err = err
		g.running = false
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.step()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.running = !g.running
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.reset()
	}
	if g.running {
		for i := 0; i < stepsPerFrame; i++ {
			g.step()
		}
	}
	return nil
}

func drawText(screen *ebiten.Image, s string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, s, face, op)
}

func (g *Game) drawRegisters(screen *ebiten.Image) {
	drawText(screen, "registers", regLayout.OriginX, 4, colorTitle)
	for i := 0; i < shownRegisters && i < len(g.vm.Regs); i++ {
		px, py := regLayout.Pixel(i)
		v := g.vm.Regs[i]
		clr := colorIdle
		if v != 0 {
			clr = colorLive
		}
		drawText(screen, fmt.Sprintf("r%-3d %d", i, v), px, py, clr)
	}
}

func (g *Game) drawVars(screen *ebiten.Image, top int) {
	drawText(screen, "memory", regLayout.OriginX, top, colorTitle)
	for v := 0; v < compiler.NumVars; v++ {
		val, err := g.vm.Var(v)
		if err != nil {
			continue
		}
		s := fmt.Sprintf("%s [%d] = %d", compiler.VarName(v), compiler.VarAddr(v), val)
		drawText(screen, s, regLayout.OriginX, top+20+v*16, colorLive)
	}
}

// drawListing shows a window of the program around the next instruction.
func (g *Game) drawListing(screen *ebiten.Image, left int) {
	var sb strings.Builder
	first := max(0, g.vm.PC-listingLines/2)
	for i := first; i < len(g.program) && i < first+listingLines; i++ {
		marker := "  "
		if i == g.vm.PC && !g.vm.Halted {
			marker = "> "
		}
		fmt.Fprintf(&sb, "%s%3d  %s\n", marker, i, g.program[i])
	}
	ebitenutil.DebugPrintAt(screen, sb.String(), left, 24)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawRegisters(screen)
	g.drawVars(screen, regLayout.OriginY+regLayout.Height(shownRegisters)+16)
	g.drawListing(screen, regLayout.OriginX+regLayout.Cols*regLayout.CellW+16)

	status := fmt.Sprintf("pc %d  steps %d  [space] step  [enter] run/pause  [r] reset", g.vm.PC, g.vm.Steps)
	if g.vm.Halted {
		status = "halted  " + status
	}
	if g.err != nil {
		status = g.err.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 8, screenH-20)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}

// compileFile compiles a source file, one statement per line, and parses
// the resulting assembly. A failing statement aborts with its diagnostic.
func compileFile(path string) ([]asm.Instruction, string, error) {
	fullPath, _, err := utils.GetPathInfo(path)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read source file: %w", err)
	}
	defer f.Close()

	var out strings.Builder
	session := compiler.NewSession(compiler.DefaultConfig())
	if err := session.CompileStream(f, &out); err != nil {
		return nil, out.String(), err
	}
	prog, err := asm.Parse(out.String())
	return prog, out.String(), err
}

func main() {
	showAsm := flag.Bool("show-asm", false, "print the generated assembly")
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: desktop [-show-asm] <source file>")
		os.Exit(2)
	}

	prog, assembly, err := compileFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Compilation failed: %v", err)
	}
	if *showAsm {
		fmt.Print("Generated Assembly:\n", assembly, "\n")
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenW*2, screenH*2)
	ebiten.SetWindowTitle("exprvm")

	if err := ebiten.RunGame(newGame(prog)); err != nil {
		log.Fatal(err)
	}
}
