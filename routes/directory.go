package routes

import (
	"school-portal-server/models"
	"school-portal-server/storage"
	"school-portal-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

// SearchRecipients returns compose-time recipient candidates by name or
// email (auth required).
func SearchRecipients(ctx iris.Context) {
	q := ctx.URLParamDefault("q", "")
	limit := ctx.URLParamIntDefault("limit", 20)
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	if len(q) < 1 {
		ctx.JSON(iris.Map{"success": true, "users": []interface{}{}})
		return
	}
	var users []models.User
	search := "%" + q + "%"
	storage.DB.Limit(limit).
		Where("lower(first_name) LIKE lower(?) OR lower(last_name) LIKE lower(?) OR lower(email) LIKE lower(?)", search, search, search).
		Select("id, first_name, last_name, avatar_url, role").
		Find(&users)
	ctx.JSON(iris.Map{"success": true, "users": users})
}

// ListAudiences returns the broadcast audience tags available to the
// requester. Only admins can broadcast, so everyone else gets an empty list.
func ListAudiences(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(iris.StatusUnauthorized)
		return
	}
	claims := tok.(*utils.AccessToken)

	audiences := []string{}
	if claims.Role == models.RoleAdmin {
		audiences = []string{models.RoleTeacher, models.RoleParent, models.RoleStudent, models.AudienceAll}
	}
	ctx.JSON(iris.Map{"audiences": audiences})
}
