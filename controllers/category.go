package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop/models"
	"eshop/store"
)

type CategoryController struct {
	categories store.CategoryStore
}

func NewCategoryController(categories store.CategoryStore) *CategoryController {
	return &CategoryController{categories: categories}
}

func (cc *CategoryController) GetCategories(c *gin.Context) {
	categories, err := cc.categories.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, categories)
}

func (cc *CategoryController) GetCategory(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Invalid category id")
		return
	}

	category, err := cc.categories.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, category)
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Name is required")
		return
	}

	if err := cc.categories.InsertCategory(c.Request.Context(), &category); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, category)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Invalid category id")
		return
	}

	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Name is required")
		return
	}

	updated, err := cc.categories.UpdateCategory(c.Request.Context(), id, &category)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, updated)
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "Invalid category id")
		return
	}

	if err := cc.categories.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Category deleted")
}
