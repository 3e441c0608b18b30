package client

// Guard blocks entry to protected views unless a valid, unexpired session
// exists. The denied destination is discarded, not remembered.
type Guard struct {
	store *SessionStore
	nav   Navigator
}

func NewGuard(store *SessionStore, nav Navigator) *Guard {
	return &Guard{store: store, nav: nav}
}

// CanEnter re-checks the persisted session state on every call and never
// touches the network.
func (g *Guard) CanEnter(route string) bool {
	if g.store.IsValid() {
		return true
	}
	g.nav.NavigateTo(LoginRoute)
	return false
}
