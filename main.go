package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug drawing (toggle with F1)")
	levelName := flag.String("level", "yard", "level name in levels/ (basename, .yaml optional)")
	fixed := flag.Bool("fixed", true, "advance the simulation in fixed 1/60s steps instead of per-frame deltas")
	watch := flag.Bool("watch", true, "hot reload prefabs, scripts and levels from disk")
	script := flag.String("script", "", "drive the player from a scenario script in prefabs/scripts instead of devices")
	scale := flag.Float64("scale", 16, "map scale in pixels per meter")
	eye := flag.Bool("eye", true, "show the first-person wireframe inset (V cycles inset, full, off)")
	flag.Parse()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle("fpsmove")

	game, err := NewGame(Options{
		Level:  *levelName,
		Debug:  *debug,
		Fixed:  *fixed,
		Watch:  *watch,
		Script: *script,
		Scale:  *scale,
		Eye:    *eye,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
