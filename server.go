package plataforma

// ServerConf configures the http server
type ServerConf struct {
	IPListen          string   `yaml:"ip_listen"`
	Port              int      `yaml:"port"`
	TLS               tlsConf  `yaml:"tls"`
	TrustedProxies    []string `yaml:"trusted_proxies"`
	ForwardedIPHeader string   `yaml:"forwarded_ip_header"`
	// ExternalURL is the address clients use, e.g. https://plataforma.pjecz.gob.mx
	ExternalURL string `yaml:"external_url"`
}

type tlsConf struct {
	Enabled      bool   `yaml:"enabled"`
	RedirectHTTP bool   `yaml:"redirect_http"`
	Cert         string `yaml:"cert"`
	Key          string `yaml:"key"`
}
