package utils

const (
	OrganizationName                      = "StaySpot"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

	DateLayout = "2006-01-02"
)
