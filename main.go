package main

import (
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sid-code-world/sketch-guess-fun/game"
	"github.com/sid-code-world/sketch-guess-fun/shared/logger"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		// non-browser clients send no Origin; let them through
		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	if _, debug := os.LookupEnv("DEBUG"); debug {
		logger.SetDebug()
	}

	ALLOWED_ORIGINS, exists := os.LookupEnv("ALLOWED_ORIGINS")
	if !exists {
		log.Fatal().Msg("missing allowed origins")
	}
	allowedOrigins := strings.Split(ALLOWED_ORIGINS, ",")

	addr, exists := os.LookupEnv("ADDR")
	if !exists {
		addr = ":5000"
	}

	rng := game.NewSystemRandom()
	idGen := game.NewRoomIdGenerator(rng)
	tickerGen := game.NewTickerGen()
	words := game.NewWordBank(rng)

	lobby := game.NewLobby(idGen, tickerGen, words, rng)

	lobbyStarted := make(chan struct{})
	go lobby.LobbyActor(lobbyStarted)
	<-lobbyStarted

	gameHandler := game.NewGameHandler(lobby, allowedOrigins)

	r := CreateServer(allowedOrigins)
	{
		gameGroup := r.Group("/game")
		gameGroup.GET("/ws", gameHandler.WebsocketHandler)
		gameGroup.GET("/rooms", gameHandler.GetRoomsHandler)
	}

	log.Info().Str("addr", addr).Msg("server starting")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
