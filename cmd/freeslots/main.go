package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Freeeeeet/makeup_scheduler/internal/app"
	"github.com/Freeeeeet/makeup_scheduler/internal/config"
	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/render"
	"github.com/Freeeeeet/makeup_scheduler/internal/repository"
	"github.com/Freeeeeet/makeup_scheduler/internal/service"
	"go.uber.org/zap"
)

func main() {
	room := flag.String("room", "", "lab room to inspect")
	day := flag.String("day", "Monday", "weekday")
	out := flag.String("png", "", "also write the availability board to this file")
	flag.Parse()

	if *room == "" {
		fmt.Fprintln(os.Stderr, "usage: freeslots -room <lr> [-day Monday] [-png board.png]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.Migrations = false

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := app.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer pool.Close()

	calendar, err := model.NewCalendar(cfg.Weekdays)
	if err != nil {
		logger.Fatal("Invalid weekdays", zap.Error(err))
	}

	store := repository.NewStore(pool)
	availability := service.NewAvailabilityService(store.Reservations, store.Enrollments, calendar,
		service.AvailabilityOptions{ReadRetries: cfg.StoreReadRetries}, logger)

	free, err := availability.RoomFreeSlots(ctx, *room, *day)
	if err != nil {
		logger.Fatal("Failed to compute free slots", zap.Error(err))
	}

	if len(free) == 0 {
		fmt.Printf("Room %s has no free time\n", *room)
	}
	for _, f := range free {
		fmt.Printf("%s %s %s\n", f.Room, f.Day, f.Slot)
	}

	if *out == "" {
		return
	}

	dayName, _ := calendar.Normalize(*day)
	col := render.Column{Room: *room}
	for _, f := range free {
		col.Free = append(col.Free, f.Slot)
	}
	img, err := render.RoomBoard(render.Board{Day: dayName, Columns: []render.Column{col}})
	if err != nil {
		logger.Fatal("Failed to render board", zap.Error(err))
	}
	if err := os.WriteFile(*out, img, 0o644); err != nil {
		logger.Fatal("Failed to write board", zap.Error(err))
	}
	fmt.Printf("Board written to %s\n", *out)
}
