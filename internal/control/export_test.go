package control

func init() {
	pauseAfterAuthError = 0
}

func (c *Control) ListenAddr() string {
	return c.ln.Addr().String()
}
