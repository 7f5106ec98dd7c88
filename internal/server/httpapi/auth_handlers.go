package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/medimate/internal/server/models"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func viewOf(u *models.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (a *API) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.writeError(c, bindingError(err), registerBody)
		return
	}

	res, err := a.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		a.writeError(c, err, registerBody)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"token":   res.Token,
		"user":    viewOf(res.User),
	})
}

func (a *API) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.writeError(c, bindingError(err), messageBody)
		return
	}

	res, err := a.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		a.writeError(c, err, messageBody)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   res.Token,
		"user":    viewOf(res.User),
	})
}

func (a *API) handleProfile(c *gin.Context) {
	user, err := a.users.Profile(c.Request.Context(), callerID(c))
	if err != nil {
		a.writeError(c, err, messageBody)
		return
	}

	c.JSON(http.StatusOK, user)
}
