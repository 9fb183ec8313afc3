package api

import (
	"net/http"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/summary"
)

func (s *APIServer) summaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		month, err := summary.ParseMonth(r.URL.Query().Get("month"))
		if err != nil {
			s.fail(w, r, err, "", "")
			return
		}

		user, ok := s.resolveCaller(w, r, queryIdentity(r), s.resolver.Resolve)
		if !ok {
			return
		}

		ctx := r.Context()
		txns, err := s.storage.Transactions.List(ctx, user.ID)
		if err != nil {
			s.fail(w, r, err, "", "")
			return
		}
		assets, err := s.storage.Assets.List(ctx, user.ID)
		if err != nil {
			s.fail(w, r, err, "", "")
			return
		}
		liabilities, err := s.storage.Liabilities.List(ctx, user.ID)
		if err != nil {
			s.fail(w, r, err, "", "")
			return
		}

		result, err := summary.Compute(txns, assets, liabilities, month)
		if err != nil {
			s.fail(w, r, err, "", "")
			return
		}

		s.writeJSON(w, http.StatusOK, result)
	}
}
