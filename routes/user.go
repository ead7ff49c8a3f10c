package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"school-portal-server/models"
	"school-portal-server/storage"
	"school-portal-server/utils"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slices"
)

// Roles selectable at registration. Admin accounts are seeded out of band.
var registrableRoles = []string{models.RoleStudent, models.RoleParent, models.RoleTeacher}

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !slices.Contains(registrableRoles, userInput.Role) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Role must be one of student, parent, teacher.", ctx)
		return
	}

	if userInput.PhoneNumber != "" && !utils.ValidatePhoneNumber(userInput.PhoneNumber) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid phone number format.", ctx)
		return
	}

	var newUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&newUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if userExists {
		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	newUser = models.User{
		FirstName:   userInput.FirstName,
		LastName:    userInput.LastName,
		Email:       strings.ToLower(userInput.Email),
		PhoneNumber: utils.NormalizePhoneNumber(userInput.PhoneNumber),
		Password:    hashedPassword,
		Role:        userInput.Role,
		SocialLogin: false}

	storage.DB.Create(&newUser)

	returnUser(newUser, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existingUser models.User
	errorMsg := "Invalid email or password."
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	if existingUser.SocialLogin {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Social Login Account", ctx)
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	returnUser(existingUser, ctx)
}

// GoogleLoginOrSignUp signs a user in with a Google Workspace access token,
// creating the account on first sign-in. New accounts default to the student
// role until staff updates them.
func GoogleLoginOrSignUp(ctx iris.Context) {
	var userInput SocialLoginInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	endpoint := "https://www.googleapis.com/userinfo/v2/me"

	client := &http.Client{}
	req, _ := http.NewRequest("GET", endpoint, nil)
	req.Header.Set("Authorization", "Bearer "+userInput.AccessToken)
	res, googleErr := client.Do(req)
	if googleErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	defer res.Body.Close()
	body, bodyErr := io.ReadAll(res.Body)
	if bodyErr != nil {
		log.Println("failed reading google userinfo response:", bodyErr)
		utils.CreateInternalServerError(ctx)
		return
	}

	var googleBody GoogleUserRes
	json.Unmarshal(body, &googleBody)

	if googleBody.Email == "" {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Invalid user token.", ctx)
		return
	}

	var user models.User
	userExists, userExistsErr := getAndHandleUserExists(&user, googleBody.Email)

	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		user = models.User{
			FirstName:      googleBody.GivenName,
			LastName:       googleBody.FamilyName,
			Email:          strings.ToLower(googleBody.Email),
			SocialLogin:    true,
			SocialProvider: "Google",
			Role:           models.RoleStudent,
		}
		storage.DB.Create(&user)

		returnUser(user, ctx)
		return
	}

	if user.SocialLogin && user.SocialProvider == "Google" {
		returnUser(user, ctx)
		return
	}

	utils.CreateEmailAlreadyRegistered(ctx)
}

// AppleLoginOrSignUp verifies an Apple identity token against Apple's JWKS
// and signs the user in, creating the account on first sign-in.
func AppleLoginOrSignUp(ctx iris.Context) {
	var userInput AppleUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	res, httpErr := http.Get("https://appleid.apple.com/auth/keys")
	if httpErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	defer res.Body.Close()

	body, bodyErr := io.ReadAll(res.Body)
	if bodyErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	jwks, jwksErr := keyfunc.NewJSON(body)
	if jwksErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	token, tokenErr := jwt.Parse(userInput.IdentityToken, jwks.Keyfunc)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !token.Valid {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Invalid user token.", ctx)
		return
	}

	email := fmt.Sprint(token.Claims.(jwt.MapClaims)["email"])
	if email == "" {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Invalid user token.", ctx)
		return
	}

	var user models.User
	userExists, userExistsErr := getAndHandleUserExists(&user, email)

	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		user = models.User{
			Email:          strings.ToLower(email),
			SocialLogin:    true,
			SocialProvider: "Apple",
			Role:           models.RoleStudent,
		}
		storage.DB.Create(&user)

		returnUser(user, ctx)
		return
	}

	if user.SocialLogin && user.SocialProvider == "Apple" {
		returnUser(user, ctx)
		return
	}

	utils.CreateEmailAlreadyRegistered(ctx)
}

func GetUser(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	ctx.JSON(user)
}

// AlterPushToken registers or removes a device push token for the user.
func AlterPushToken(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	var req AlterPushTokenInput
	err := ctx.ReadJSON(&req)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var tokens []string
	var unMarshalledTokens []string

	if user.PushTokens != nil {
		unmarshalErr := json.Unmarshal(user.PushTokens, &unMarshalledTokens)
		if unmarshalErr != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	if req.Op == "add" {
		if !slices.Contains(unMarshalledTokens, req.Token) {
			tokens = append(unMarshalledTokens, req.Token)
		} else {
			tokens = unMarshalledTokens
		}
	} else if req.Op == "remove" && len(unMarshalledTokens) > 0 {
		for _, token := range unMarshalledTokens {
			if req.Token != token {
				tokens = append(tokens, token)
			}
		}
	}

	marshalledTokens, marshalErr := json.Marshal(tokens)
	if marshalErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	user.PushTokens = marshalledTokens
	storage.DB.Save(&user)

	ctx.StatusCode(iris.StatusNoContent)
}

// AllowsNotifications updates the user's notification preference.
func AllowsNotifications(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	var req AllowsNotificationsInput
	err := ctx.ReadJSON(&req)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	user.AllowsNotifications = req.AllowsNotifications
	storage.DB.Save(&user)

	ctx.StatusCode(iris.StatusNoContent)
}

func getAndHandleUserExists(user *models.User, email string) (exists bool, err error) {
	userExistsQuery := storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(&user)

	if userExistsQuery.Error != nil {
		return false, userExistsQuery.Error
	}

	return userExistsQuery.RowsAffected > 0, nil
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

func getUserByID(id string, ctx iris.Context) *models.User {
	var user models.User
	userExists := storage.DB.Where("id = ?", id).Find(&user)

	if userExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil
	}

	if userExists.RowsAffected == 0 {
		utils.CreateError(iris.StatusNotFound, "Not Found", "User not found", ctx)
		return nil
	}

	return &user
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user.ID)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"ID":                  user.ID,
		"firstName":           user.FirstName,
		"lastName":            user.LastName,
		"email":               user.Email,
		"role":                user.Role,
		"allowsNotifications": user.AllowsNotifications,
		"accessToken":         string(tokenPair.AccessToken),
		"refreshToken":        string(tokenPair.RefreshToken),
	})
}

type RegisterUserInput struct {
	FirstName   string `json:"firstName" validate:"required,max=256"`
	LastName    string `json:"lastName" validate:"required,max=256"`
	Email       string `json:"email" validate:"required,max=256,email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password" validate:"required,min=8,max=256"`
	Role        string `json:"role" validate:"required"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SocialLoginInput struct {
	AccessToken string `json:"accessToken" validate:"required"`
}

type AppleUserInput struct {
	IdentityToken string `json:"identityToken" validate:"required"`
}

type GoogleUserRes struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

type AlterPushTokenInput struct {
	Token string `json:"token" validate:"required"`
	Op    string `json:"op" validate:"required,oneof=add remove"`
}

type AllowsNotificationsInput struct {
	AllowsNotifications *bool `json:"allowsNotifications" validate:"required"`
}
