package handlers

import (
	"github.com/jmoiron/sqlx"

	"sodastock/internal/config"
	"sodastock/internal/provider"
	"sodastock/internal/repos"
	"sodastock/internal/services"
)

type Deps struct {
	ListHandler   *ListHandler
	EditorHandler *EditorHandler
	APIHandler    *APIHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	sodaRepo := repos.NewSodaRepo(db)
	prov := provider.New(sodaRepo)
	stockSvc := services.NewStockService(prov)

	return &Deps{
		ListHandler:   &ListHandler{Stock: stockSvc, DB: db},
		EditorHandler: &EditorHandler{Stock: stockSvc},
		APIHandler:    &APIHandler{Stock: stockSvc},
	}
}
