// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"crazypuzzle/internal/auth"
	"crazypuzzle/internal/cache"
	"crazypuzzle/internal/database"
	"crazypuzzle/internal/handlers"
	"crazypuzzle/internal/middleware"
	"crazypuzzle/internal/stats"
	"crazypuzzle/internal/store"
)

func main() {
	auth.Init()
	database.ConnectDB()
	if err := cache.ConnectRedis(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	rooms := store.NewMemoryRoomStore()
	statsStore := stats.NewRedisStatsStore(cache.Rdb)
	srv := handlers.NewServer(rooms, statsStore)

	mux := http.NewServeMux()

	// user endpoints
	mux.HandleFunc("/user/create", srv.CreateUserHandler)
	mux.HandleFunc("/user/login", srv.LoginHandler)

	// room endpoints
	mux.Handle("/room/create", middleware.LogMiddleware(logger)(http.HandlerFunc(srv.CreateRoomHandler)))
	mux.Handle("/room/list", middleware.LogMiddleware(logger)(http.HandlerFunc(srv.ListRoomsHandler)))
	mux.Handle("/room/join", middleware.LogMiddleware(logger)(http.HandlerFunc(srv.JoinRoomHandler)))
	mux.Handle("/room/delete", middleware.LogMiddleware(logger)(http.HandlerFunc(srv.DeleteRoomHandler)))

	// room websocket
	mux.Handle("/room/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(srv.RoomWSHandler(logger))))

	// lobby websocket
	mux.Handle("/lobby/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(srv.LobbyWSHandler(logger))))

	// single-player scores
	mux.Handle("/score/submit", middleware.LogMiddleware(logger)(http.HandlerFunc(srv.SubmitScoreHandler)))
	mux.Handle("/score/top", middleware.LogMiddleware(logger)(http.HandlerFunc(srv.TopScoresHandler)))

	// multiplayer stats
	mux.Handle("/stats/me", middleware.LogMiddleware(logger)(http.HandlerFunc(srv.MyStatsHandler)))
	mux.Handle("/stats/top", middleware.LogMiddleware(logger)(http.HandlerFunc(srv.TopStatsHandler)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
