package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	appcfg "github.com/kapu/kakao-gamebot-go/internal/config"
	"github.com/kapu/kakao-gamebot-go/internal/game"
	"github.com/kapu/kakao-gamebot-go/internal/game/chessgame"
	"github.com/kapu/kakao-gamebot-go/internal/game/connectfour"
	"github.com/kapu/kakao-gamebot-go/internal/game/tictactoe"
	"github.com/kapu/kakao-gamebot-go/internal/gamehub"
	"github.com/kapu/kakao-gamebot-go/internal/irisfast"
	"github.com/kapu/kakao-gamebot-go/internal/msgcat"
	"github.com/kapu/kakao-gamebot-go/internal/obslog"
	"github.com/kapu/kakao-gamebot-go/internal/playmode"
	"github.com/kapu/kakao-gamebot-go/internal/record"
	"github.com/kapu/kakao-gamebot-go/internal/session"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("log init error: %v", err)
	}

	cat, err := msgcat.New(cfg.MsgTemplateDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	headers := func() map[string]string {
		h := map[string]string{}
		if cfg.XUserID != "" {
			h["X-User-Id"] = cfg.XUserID
		}
		if cfg.XUserEmail != "" {
			h["X-User-Email"] = cfg.XUserEmail
		}
		if cfg.XSessionID != "" {
			h["X-Session-Id"] = cfg.XSessionID
		}
		return h
	}

	client := irisfast.NewClient(cfg.IrisBaseURL, irisfast.WithHeaderProvider(headers))

	ws := irisfast.NewWebSocket(cfg.IrisWSURL, 5, time.Second)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		obslog.L().Info("ws_state", zap.String("state", string(state)))
	})

	games := game.NewRegistry(
		tictactoe.Factory(),
		connectfour.Factory(),
		chessgame.Factory(),
	)
	sessions := session.NewRegistry(games)
	modes := playmode.NewTracker()

	// Results ledger is optional; without REDIS_URL finished games are
	// simply not recorded.
	var records *record.Store
	if cfg.RedisURL != "" {
		records, err = record.NewStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("record store init error: %v", err)
		}
		if cfg.DatabaseURL != "" {
			repo, rerr := record.NewRepository(cfg.DatabaseURL)
			if rerr != nil {
				log.Fatalf("record repo init error: %v", rerr)
			}
			records.AttachRepository(repo)
			defer repo.Close()
		}
		defer records.Close()
	}

	hub := gamehub.New(gamehub.Config{
		Prefix:    cfg.BotPrefix,
		Enabled:   cfg.RoomAllowed,
		Games:     games,
		Sessions:  sessions,
		Modes:     modes,
		Catalog:   cat,
		Transport: client,
		Resolver:  mentionResolver{client: client},
		Records:   records,
	})

	ws.OnMessage(func(msg *irisfast.Message) {
		if msg == nil || msg.Msg == "" {
			return
		}
		player := playerFromMessage(msg)
		if player.ID == "" {
			return
		}
		if !hub.IsGameInput(msg.Room, player, msg.Msg) {
			return
		}
		// Avoid blocking the WS loop
		go hub.Handle(context.Background(), player, msg.Room, msg.Msg)
	})

	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ws.Connect(cctx); err != nil {
		cancel()
		log.Fatalf("ws connect error: %v", err)
	}
	cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	_ = ws.Close(context.Background())
}

func playerFromMessage(msg *irisfast.Message) game.Player {
	p := game.Player{}
	if msg.JSON != nil {
		p.ID = strings.TrimSpace(msg.JSON.UserID)
		p.Name = strings.TrimSpace(msg.JSON.UserName)
	}
	if p.ID == "" && msg.Sender != nil {
		p.ID = strings.TrimSpace(*msg.Sender)
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	return p
}

// mentionResolver resolves @name tokens through the bridge user query.
type mentionResolver struct {
	client *irisfast.Client
}

func (r mentionResolver) ResolveMention(ctx context.Context, room, mention string) (game.Player, error) {
	name := strings.TrimPrefix(strings.TrimSpace(mention), "@")
	u, err := r.client.ResolveUser(ctx, room, name)
	if err != nil {
		return game.Player{}, err
	}
	return game.Player{ID: u.ID, Name: u.Name}, nil
}
