package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// banner is served for every unmatched route or method.
const banner = `   _____          _          _  _____                     ` +
	"\n" +
	`  / ____|        | |        | |/ ____|                    ` +
	"\n" +
	` | |     ___   __| | ___  __| | (___  _ __   _____      __` +
	"\n" +
	` | |    / _ \ / _` + "`" + ` |/ _ \/ _` + "`" + ` |\___ \| '_ \ / _ \ \ /\ / /` +
	"\n" +
	` | |___| (_) | (_| |  __/ (_| |____) | | | | (_) \ V  V / ` +
	"\n" +
	`  \_____\___/ \__,_|\___|\__,_|_____/|_| |_|\___/ \_/\_/`

// Banner answers unmatched routes with 200 and the CodedSnow banner.
func Banner(c *gin.Context) {
	c.String(http.StatusOK, banner)
}
