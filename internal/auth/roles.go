package auth

import (
	"context"

	"github.com/avelasco-dev/inventario/internal/store"
)

// UsersCollection is where per-user role documents live, keyed by user id.
const UsersCollection = "users"

// LookupRole reads the role field of the user's document. Any failure —
// missing document, missing field, store error — degrades to RoleReader so
// a broken role lookup never blocks sign-in.
func LookupRole(ctx context.Context, st store.Store, userID string) string {
	doc, err := st.Get(ctx, UsersCollection, userID)
	if err != nil {
		return RoleReader
	}
	role, ok := doc.Fields["role"].(string)
	if !ok || role == "" {
		return RoleReader
	}
	return role
}
