// Command leveled edits the box levels under levels/ in a top-down view.
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/fpsmove/levels"
)

func main() {
	levelName := flag.String("level", "yard", "Level name to load from levels/ (.yaml optional); a missing level starts empty")
	grid := flag.Float64("grid", 0.25, "Snap size in metres")
	flag.Parse()

	log.Println("Level editor starting...")
	lvl, err := levels.LoadLevel(*levelName)
	if err != nil {
		log.Printf("Failed to load level %s, starting empty: %v", *levelName, err)
		lvl = &levels.Level{Name: *levelName}
	}

	w, h := 1280, 720
	game := NewEditorGame(newDocument(lvl, normalizeSavePath(*levelName)), w, h)
	game.canvas.Grid = *grid

	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("leveled - " + *levelName)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
