package features

// ImplementedAuthFeatures lists the sign-in providers the bridge can drive.
var ImplementedAuthFeatures = map[string]bool{
	"local":  true,
	"oauth":  true,
	"github": true,
	"google": true,
}
