package main

import (
	"context"
	"log"
	"net/http"

	firebase "firebase.google.com/go/v4"
	"github.com/Miltondz/flipFilme/main/Handlers"
	"github.com/Miltondz/flipFilme/main/Handlers/FirebaseHandlers"
	"github.com/rs/cors"
)

func main() {
	config, err := Handlers.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger, err := Handlers.InitLogger(config.LogPath, config.Debug)
	if err != nil {
		log.Fatal("Failed to init logger:", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()

	ctx := context.Background()

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: config.FirebaseProject})
	if err != nil {
		sugar.Fatalf("failed to init firebase app: %v", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		sugar.Fatalf("failed to init firebase auth: %v", err)
	}
	fireStore, err := app.Firestore(ctx)
	if err != nil {
		sugar.Fatalf("failed to init firestore: %v", err)
	}
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		sugar.Fatalf("failed to init firebase messaging: %v", err)
	}

	mongoHandler, err := Handlers.NewMongoHandler(ctx, config.MongoHost, sugar)
	if err != nil {
		sugar.Fatalf("failed to create MongoHandler: %v", err)
	}

	tmdbHandler := Handlers.NewTmdbHandler(config.TmdbApiKey, config.TmdbBaseUrl, sugar)
	searchHandler := &Handlers.SearchHandler{Tmdb: tmdbHandler, Cache: mongoHandler, Log: sugar}
	popularHandler := &Handlers.PopularHandler{Tmdb: tmdbHandler, Cache: mongoHandler, Log: sugar}
	inspectHandler := &Handlers.InspectHandler{Tmdb: tmdbHandler, Cache: mongoHandler, Log: sugar}

	store := FirebaseHandlers.NewStore(fireStore, sugar)
	friendFeed := &FirebaseHandlers.FriendFeed{Source: store, Log: sugar}
	fcmHandler := &FirebaseHandlers.FcmHandler{
		AuthHandler: authClient,
		Store:       store,
		Messaging:   messagingClient,
		Log:         sugar,
	}
	friendHandler := &FirebaseHandlers.FriendHandler{
		AuthHandler: authClient,
		Store:       store,
		Feed:        friendFeed,
		Log:         sugar,
	}
	movieHandler := FirebaseHandlers.NewMovieHandler(authClient, store, fcmHandler, sugar)
	feedSocketHandler := FirebaseHandlers.NewFeedSocketHandler(authClient, store, sugar)
	shareHandler := &FirebaseHandlers.ShareHandler{
		AuthHandler: authClient,
		Store:       store,
		BaseUrl:     config.ShareBaseUrl,
		Log:         sugar,
	}
	deletionHandler := &FirebaseHandlers.DeletionHandler{
		AuthHandler: authClient,
		FireStore:   fireStore,
		Log:         sugar,
	}

	mux := http.NewServeMux()
	mux.Handle("/search", searchHandler)
	mux.Handle("/popular", popularHandler)
	mux.Handle("/inspect", inspectHandler)
	mux.HandleFunc("/movies", movieHandler.LogMovieWrapper)
	mux.HandleFunc("/movies/delete", movieHandler.DeleteMovieWrapper)
	mux.Handle("/movies/feed", feedSocketHandler)
	mux.HandleFunc("/users", friendHandler.CreateProfileWrapper)
	mux.HandleFunc("/friends", friendHandler.FriendsWrapper)
	mux.HandleFunc("/friends/add", friendHandler.AddFriendWrapper)
	mux.HandleFunc("/friends/movies", friendHandler.FriendMoviesWrapper)
	mux.HandleFunc("/users/search", friendHandler.SearchUsersWrapper)
	mux.Handle("/share", shareHandler)
	mux.HandleFunc("/notifications/token", fcmHandler.AddedTokenWrapper)
	mux.HandleFunc("/notifications/token/remove", fcmHandler.RemovedTokenWrapper)
	mux.Handle("/account/delete", deletionHandler)

	handler := cors.Default().Handler(mux)

	sugar.Infof("server listening on http://localhost:%s/", config.Port)
	sugar.Fatal(http.ListenAndServe(":"+config.Port, handler))
}
