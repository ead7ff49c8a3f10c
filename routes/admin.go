package routes

import (
	"net/http"
	"strings"

	"school-portal-server/models"
	"school-portal-server/storage"
	"school-portal-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"
)

var assignableRoles = []string{models.RoleStudent, models.RoleParent, models.RoleTeacher, models.RoleAdmin}

func AdminListUsers(ctx iris.Context) {
	// Basic pagination
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	var users []models.User
	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))
	role := strings.TrimSpace(ctx.URLParamDefault("role", ""))

	query := storage.DB.Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)
	query = query.Offset((page - 1) * perPage).Limit(perPage)
	if err := query.Find(&users).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, users, page, perPage, total)
}

// AdminChangeUserRole - PATCH /admin/users/:id/role
func AdminChangeUserRole(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := ctx.ReadJSON(&body); err != nil || !slices.Contains(assignableRoles, body.Role) {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "role must be one of student, parent, teacher, admin")
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "user not found")
		return
	}

	before := user
	user.Role = body.Role
	if err := storage.DB.Save(&user).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "user.role_change", "user", user.ID, before, user)

	ctx.JSON(iris.Map{"data": user})
}

// AdminListAuditLog - GET /admin/audit
func AdminListAuditLog(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 50)
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	query := storage.DB.Model(&models.AuditLog{}).Order("created_at DESC")
	if action := strings.TrimSpace(ctx.URLParamDefault("action", "")); action != "" {
		query = query.Where("action = ?", action)
	}

	var total int64
	query.Count(&total)

	var logs []models.AuditLog
	if err := query.Offset((page - 1) * perPage).Limit(perPage).Find(&logs).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, logs, page, perPage, total)
}
